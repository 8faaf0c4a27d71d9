// 指示: miu200521358
package model

const (
	// BakeWarningActionInvalidated はアクションの値が新しいレスト基準と合わなくなる警告。
	BakeWarningActionInvalidated = "BakeWarningActionInvalidated"
	// BakeWarningZeroLengthBone は長さゼロのボーンでロールを維持した警告。
	BakeWarningZeroLengthBone = "BakeWarningZeroLengthBone"
	// BakeWarningObjectParentSingular は親行列が特異なため子オブジェクトを補正しなかった警告。
	BakeWarningObjectParentSingular = "BakeWarningObjectParentSingular"
	// BakeWarningObjectParentBoneMissing は親ボーンが見つからず子オブジェクトを補正しなかった警告。
	BakeWarningObjectParentBoneMissing = "BakeWarningObjectParentBoneMissing"
)
