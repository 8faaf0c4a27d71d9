// 指示: miu200521358
package rig

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_restbake/pkg/domain/mmath"
	"github.com/miu200521358/mu_restbake/pkg/domain/model"
)

// rigDocument はリグファイル全体を表す。
type rigDocument struct {
	Armatures []armatureDocument `toml:"armatures"`
	Objects   []objectDocument   `toml:"objects,omitempty"`
}

type armatureDocument struct {
	Name         string            `toml:"name"`
	Linked       bool              `toml:"linked,omitempty"`
	HasAction    bool              `toml:"has_action,omitempty"`
	ObjectMatrix []float64         `toml:"object_matrix,omitempty"`
	Bones        []boneDocument    `toml:"bones"`
	Pose         []channelDocument `toml:"pose,omitempty"`
}

type boneDocument struct {
	Name            string         `toml:"name"`
	Parent          string         `toml:"parent,omitempty"`
	Head            []float64      `toml:"head"`
	Tail            []float64      `toml:"tail"`
	Roll            float64        `toml:"roll"`
	Connected       bool           `toml:"connected,omitempty"`
	Hinge           bool           `toml:"hinge,omitempty"`
	NoLocalLocation bool           `toml:"no_local_location,omitempty"`
	Unkeyed         bool           `toml:"unkeyed,omitempty"`
	InheritScale    string         `toml:"inherit_scale,omitempty"`
	Segments        int            `toml:"segments,omitempty"`
	BBone           *bboneDocument `toml:"bbone,omitempty"`
}

type bboneDocument struct {
	CurveInX  float64   `toml:"curve_in_x"`
	CurveInZ  float64   `toml:"curve_in_z"`
	CurveOutX float64   `toml:"curve_out_x"`
	CurveOutZ float64   `toml:"curve_out_z"`
	Roll1     float64   `toml:"roll1"`
	Roll2     float64   `toml:"roll2"`
	Ease1     float64   `toml:"ease1"`
	Ease2     float64   `toml:"ease2"`
	ScaleIn   []float64 `toml:"scale_in,omitempty"`
	ScaleOut  []float64 `toml:"scale_out,omitempty"`
}

type channelDocument struct {
	Name         string               `toml:"name"`
	Selected     bool                 `toml:"selected,omitempty"`
	Location     []float64            `toml:"location,omitempty"`
	RotationMode string               `toml:"rotation_mode,omitempty"`
	Quaternion   []float64            `toml:"quaternion,omitempty"`
	Euler        []float64            `toml:"euler,omitempty"`
	EulerOrder   string               `toml:"euler_order,omitempty"`
	Axis         []float64            `toml:"axis,omitempty"`
	Angle        float64              `toml:"angle,omitempty"`
	Scale        []float64            `toml:"scale,omitempty"`
	BBone        *bboneDocument       `toml:"bbone,omitempty"`
	Constraints  []constraintDocument `toml:"constraints,omitempty"`
}

type constraintDocument struct {
	Type        string    `toml:"type"`
	Name        string    `toml:"name,omitempty"`
	TargetBone  string    `toml:"target_bone,omitempty"`
	HeadTail    float64   `toml:"head_tail,omitempty"`
	TargetPoint []float64 `toml:"target_point,omitempty"`
	RestLength  float64   `toml:"rest_length,omitempty"`
	Bulge       float64   `toml:"bulge,omitempty"`
	Volume      string    `toml:"volume,omitempty"`
	Plane       string    `toml:"plane,omitempty"`
	Distance    float64   `toml:"distance,omitempty"`
	LimitMode   string    `toml:"limit_mode,omitempty"`
}

type objectDocument struct {
	Name           string    `toml:"name"`
	ParentArmature string    `toml:"parent_armature,omitempty"`
	ParentType     string    `toml:"parent_type,omitempty"`
	ParentBone     string    `toml:"parent_bone,omitempty"`
	Location       []float64 `toml:"location,omitempty"`
	Rotation       []float64 `toml:"rotation,omitempty"`
	Scale          []float64 `toml:"scale,omitempty"`
	ParentInverse  []float64 `toml:"parent_inverse,omitempty"`
}

// toScene は文書をシーンへ変換する。
func (d *rigDocument) toScene() (*model.Scene, error) {
	scene := model.NewScene()
	for i := range d.Armatures {
		armature, err := d.Armatures[i].toArmature()
		if err != nil {
			return nil, err
		}
		if scene.Armature(armature.Name) != nil {
			return nil, fmt.Errorf("アーマチュア名が重複しています: %s", armature.Name)
		}
		scene.Armatures = append(scene.Armatures, armature)
	}
	for i := range d.Objects {
		object, err := d.Objects[i].toObject()
		if err != nil {
			return nil, err
		}
		scene.Objects = append(scene.Objects, object)
	}
	return scene, nil
}

func (d *armatureDocument) toArmature() (*model.Armature, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("アーマチュア名が未設定です")
	}
	armature := model.NewArmature(d.Name)
	armature.Linked = d.Linked
	armature.HasAction = d.HasAction
	objectMatrix, err := toMat4(d.ObjectMatrix, mgl64.Ident4())
	if err != nil {
		return nil, fmt.Errorf("object_matrix: armature=%s: %w", d.Name, err)
	}
	armature.ObjectMatrix = objectMatrix

	for i := range d.Bones {
		bone, err := d.Bones[i].toBone()
		if err != nil {
			return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
		}
		if err := armature.Bones.Append(bone); err != nil {
			return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
		}
	}
	for i := range d.Bones {
		if d.Bones[i].Parent == "" {
			continue
		}
		parent, err := armature.Bones.GetByName(d.Bones[i].Parent)
		if err != nil {
			return nil, fmt.Errorf("親ボーンが見つかりません: armature=%s bone=%s parent=%s",
				d.Name, d.Bones[i].Name, d.Bones[i].Parent)
		}
		armature.Bones.Values()[i].ParentIndex = parent.Index
	}
	if _, err := armature.Bones.TopologicalOrder(); err != nil {
		return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
	}

	for i := range d.Pose {
		if !armature.Bones.ContainsName(d.Pose[i].Name) {
			return nil, fmt.Errorf("ポーズチャンネルに対応するボーンがありません: armature=%s channel=%s",
				d.Name, d.Pose[i].Name)
		}
		channel, err := d.Pose[i].toChannel()
		if err != nil {
			return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
		}
		if err := armature.Pose.Append(channel); err != nil {
			return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
		}
	}
	if err := armature.EnsurePose(); err != nil {
		return nil, fmt.Errorf("armature=%s: %w", d.Name, err)
	}
	return armature, nil
}

func (d *boneDocument) toBone() (*model.Bone, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("ボーン名が未設定です")
	}
	head, err := toVec3(d.Head, mmath.ZERO_VEC3)
	if err != nil {
		return nil, fmt.Errorf("head: bone=%s: %w", d.Name, err)
	}
	tail, err := toVec3(d.Tail, mmath.UNIT_Y_VEC3)
	if err != nil {
		return nil, fmt.Errorf("tail: bone=%s: %w", d.Name, err)
	}
	bone := model.NewBone(d.Name, head, tail)
	bone.Roll = d.Roll
	if d.Connected {
		bone.Flag |= model.BONE_FLAG_CONNECTED
	}
	if d.Hinge {
		bone.Flag |= model.BONE_FLAG_HINGE
	}
	if d.NoLocalLocation {
		bone.Flag |= model.BONE_FLAG_NO_LOCAL_LOCATION
	}
	if d.Unkeyed {
		bone.Flag |= model.BONE_FLAG_UNKEYED
	}
	if bone.InheritScaleMode, err = model.ParseInheritScaleMode(d.InheritScale); err != nil {
		return nil, fmt.Errorf("bone=%s: %w", d.Name, err)
	}
	if d.Segments > 1 {
		bone.Segments = d.Segments
	}
	if d.BBone != nil {
		if bone.BBone, err = d.BBone.toShape(model.NewRestBBoneShape()); err != nil {
			return nil, fmt.Errorf("bbone: bone=%s: %w", d.Name, err)
		}
	}
	return bone, nil
}

func (d *bboneDocument) toShape(base model.BBoneShape) (model.BBoneShape, error) {
	shape := model.BBoneShape{
		CurveInX:  d.CurveInX,
		CurveInZ:  d.CurveInZ,
		CurveOutX: d.CurveOutX,
		CurveOutZ: d.CurveOutZ,
		Roll1:     d.Roll1,
		Roll2:     d.Roll2,
		Ease1:     d.Ease1,
		Ease2:     d.Ease2,
	}
	var err error
	if shape.ScaleIn, err = toVec3(d.ScaleIn, base.ScaleIn); err != nil {
		return shape, fmt.Errorf("scale_in: %w", err)
	}
	if shape.ScaleOut, err = toVec3(d.ScaleOut, base.ScaleOut); err != nil {
		return shape, fmt.Errorf("scale_out: %w", err)
	}
	return shape, nil
}

func (d *channelDocument) toChannel() (*model.PoseChannel, error) {
	channel := model.NewPoseChannel(d.Name)
	channel.Selected = d.Selected
	local := &channel.Local
	var err error
	if local.Location, err = toVec3(d.Location, mmath.ZERO_VEC3); err != nil {
		return nil, fmt.Errorf("location: channel=%s: %w", d.Name, err)
	}
	if local.RotationMode, err = model.ParseRotationMode(d.RotationMode); err != nil {
		return nil, fmt.Errorf("channel=%s: %w", d.Name, err)
	}
	if local.Quaternion, err = toQuat(d.Quaternion); err != nil {
		return nil, fmt.Errorf("quaternion: channel=%s: %w", d.Name, err)
	}
	if local.Euler, err = toVec3(d.Euler, mmath.ZERO_VEC3); err != nil {
		return nil, fmt.Errorf("euler: channel=%s: %w", d.Name, err)
	}
	if d.EulerOrder != "" {
		if local.EulerOrder, err = mmath.ParseEulerOrder(d.EulerOrder); err != nil {
			return nil, fmt.Errorf("channel=%s: %w", d.Name, err)
		}
	}
	if local.AxisAngleAxis, err = toVec3(d.Axis, mmath.UNIT_Y_VEC3); err != nil {
		return nil, fmt.Errorf("axis: channel=%s: %w", d.Name, err)
	}
	local.AxisAngle = d.Angle
	if local.Scale, err = toVec3(d.Scale, mmath.ONE_VEC3); err != nil {
		return nil, fmt.Errorf("scale: channel=%s: %w", d.Name, err)
	}
	if d.BBone != nil {
		if local.BBone, err = d.BBone.toShape(model.NewPoseBBoneShape()); err != nil {
			return nil, fmt.Errorf("bbone: channel=%s: %w", d.Name, err)
		}
	}
	for i := range d.Constraints {
		constraint, err := d.Constraints[i].toConstraint()
		if err != nil {
			return nil, fmt.Errorf("channel=%s: %w", d.Name, err)
		}
		channel.Constraints = append(channel.Constraints, constraint)
	}
	return channel, nil
}

func (d *constraintDocument) toConstraint() (model.Constraint, error) {
	constraintType, err := model.ParseConstraintType(d.Type)
	if err != nil {
		return nil, err
	}
	point, err := toVec3(d.TargetPoint, mmath.ZERO_VEC3)
	if err != nil {
		return nil, fmt.Errorf("target_point: constraint=%s: %w", d.Name, err)
	}
	target := model.ConstraintTarget{BoneName: d.TargetBone, HeadTail: d.HeadTail, Point: point}
	switch constraintType {
	case model.CONSTRAINT_TYPE_STRETCH_TO:
		constraint := model.NewStretchToConstraint(d.Name, target)
		constraint.RestLength = d.RestLength
		if d.Bulge != 0 {
			constraint.Bulge = d.Bulge
		}
		if constraint.VolumeMode, err = model.ParseStretchVolumeMode(d.Volume); err != nil {
			return nil, err
		}
		if constraint.Plane, err = model.ParseStretchPlane(d.Plane); err != nil {
			return nil, err
		}
		return constraint, nil
	default:
		constraint := model.NewLimitDistanceConstraint(d.Name, target)
		constraint.Distance = d.Distance
		if constraint.Mode, err = model.ParseLimitDistanceMode(d.LimitMode); err != nil {
			return nil, err
		}
		return constraint, nil
	}
}

func (d *objectDocument) toObject() (*model.Object, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("オブジェクト名が未設定です")
	}
	object := model.NewObject(d.Name)
	object.ParentArmature = d.ParentArmature
	object.ParentBone = d.ParentBone
	var err error
	if object.ParentType, err = model.ParseParentType(d.ParentType); err != nil {
		return nil, fmt.Errorf("object=%s: %w", d.Name, err)
	}
	if object.Location, err = toVec3(d.Location, mmath.ZERO_VEC3); err != nil {
		return nil, fmt.Errorf("location: object=%s: %w", d.Name, err)
	}
	if object.Rotation, err = toQuat(d.Rotation); err != nil {
		return nil, fmt.Errorf("rotation: object=%s: %w", d.Name, err)
	}
	if object.Scale, err = toVec3(d.Scale, mmath.ONE_VEC3); err != nil {
		return nil, fmt.Errorf("scale: object=%s: %w", d.Name, err)
	}
	if object.ParentInverse, err = toMat4(d.ParentInverse, mgl64.Ident4()); err != nil {
		return nil, fmt.Errorf("parent_inverse: object=%s: %w", d.Name, err)
	}
	return object, nil
}

// newRigDocument はシーンを文書へ変換する。
func newRigDocument(scene *model.Scene) (*rigDocument, error) {
	doc := &rigDocument{}
	for _, armature := range scene.Armatures {
		armatureDoc, err := newArmatureDocument(armature)
		if err != nil {
			return nil, err
		}
		doc.Armatures = append(doc.Armatures, armatureDoc)
	}
	for _, object := range scene.Objects {
		doc.Objects = append(doc.Objects, newObjectDocument(object))
	}
	return doc, nil
}

func newArmatureDocument(armature *model.Armature) (armatureDocument, error) {
	doc := armatureDocument{
		Name:      armature.Name,
		Linked:    armature.Linked,
		HasAction: armature.HasAction,
	}
	if armature.ObjectMatrix != mgl64.Ident4() {
		doc.ObjectMatrix = fromMat4(armature.ObjectMatrix)
	}
	for _, bone := range armature.Bones.Values() {
		parentName := ""
		if parent := armature.Bones.Parent(bone); parent != nil {
			parentName = parent.Name
		}
		boneDoc := boneDocument{
			Name:            bone.Name,
			Parent:          parentName,
			Head:            fromVec3(bone.Head),
			Tail:            fromVec3(bone.Tail),
			Roll:            bone.Roll,
			Connected:       bone.Flag.Has(model.BONE_FLAG_CONNECTED),
			Hinge:           bone.Flag.Has(model.BONE_FLAG_HINGE),
			NoLocalLocation: bone.Flag.Has(model.BONE_FLAG_NO_LOCAL_LOCATION),
			Unkeyed:         bone.Flag.Has(model.BONE_FLAG_UNKEYED),
			Segments:        bone.Segments,
		}
		if bone.InheritScaleMode != model.INHERIT_SCALE_FULL {
			boneDoc.InheritScale = bone.InheritScaleMode.String()
		}
		if bone.IsBendy() || bone.BBone != model.NewRestBBoneShape() {
			boneDoc.BBone = newBBoneDocument(bone.BBone)
		}
		doc.Bones = append(doc.Bones, boneDoc)
	}
	for _, channel := range armature.Pose.Values() {
		channelDoc, err := newChannelDocument(channel)
		if err != nil {
			return doc, fmt.Errorf("armature=%s: %w", armature.Name, err)
		}
		doc.Pose = append(doc.Pose, channelDoc)
	}
	return doc, nil
}

func newBBoneDocument(shape model.BBoneShape) *bboneDocument {
	return &bboneDocument{
		CurveInX:  shape.CurveInX,
		CurveInZ:  shape.CurveInZ,
		CurveOutX: shape.CurveOutX,
		CurveOutZ: shape.CurveOutZ,
		Roll1:     shape.Roll1,
		Roll2:     shape.Roll2,
		Ease1:     shape.Ease1,
		Ease2:     shape.Ease2,
		ScaleIn:   fromVec3(shape.ScaleIn),
		ScaleOut:  fromVec3(shape.ScaleOut),
	}
}

func newChannelDocument(channel *model.PoseChannel) (channelDocument, error) {
	local := channel.Local
	doc := channelDocument{
		Name:         channel.Name,
		Selected:     channel.Selected,
		Location:     fromVec3(local.Location),
		RotationMode: local.RotationMode.String(),
		Quaternion:   fromQuat(local.Quaternion),
		Euler:        fromVec3(local.Euler),
		EulerOrder:   local.EulerOrder.String(),
		Axis:         fromVec3(local.AxisAngleAxis),
		Angle:        local.AxisAngle,
		Scale:        fromVec3(local.Scale),
	}
	if local.BBone != model.NewPoseBBoneShape() {
		doc.BBone = newBBoneDocument(local.BBone)
	}
	for _, constraint := range channel.Constraints {
		constraintDoc, err := newConstraintDocument(constraint)
		if err != nil {
			return doc, fmt.Errorf("channel=%s: %w", channel.Name, err)
		}
		doc.Constraints = append(doc.Constraints, constraintDoc)
	}
	return doc, nil
}

func newConstraintDocument(constraint model.Constraint) (constraintDocument, error) {
	target := constraint.ConstraintTarget()
	doc := constraintDocument{
		Type:       constraint.Type().String(),
		Name:       constraint.ConstraintName(),
		TargetBone: target.BoneName,
		HeadTail:   target.HeadTail,
	}
	if target.BoneName == "" {
		doc.TargetPoint = fromVec3(target.Point)
	}
	switch data := constraint.(type) {
	case *model.StretchToConstraint:
		doc.RestLength = data.RestLength
		doc.Bulge = data.Bulge
		doc.Volume = data.VolumeMode.String()
		doc.Plane = data.Plane.String()
	case *model.LimitDistanceConstraint:
		doc.Distance = data.Distance
		doc.LimitMode = data.Mode.String()
	default:
		return doc, fmt.Errorf("保存できないコンストレイントです: %s", constraint.ConstraintName())
	}
	return doc, nil
}

func newObjectDocument(object *model.Object) objectDocument {
	doc := objectDocument{
		Name:           object.Name,
		ParentArmature: object.ParentArmature,
		ParentBone:     object.ParentBone,
		Location:       fromVec3(object.Location),
		Rotation:       fromQuat(object.Rotation),
		Scale:          fromVec3(object.Scale),
	}
	if object.ParentType != model.PARENT_TYPE_NONE {
		doc.ParentType = object.ParentType.String()
	}
	if object.ParentInverse != mgl64.Ident4() {
		doc.ParentInverse = fromMat4(object.ParentInverse)
	}
	return doc
}

// toVec3 は3要素の配列をベクトルへ変換する。空の場合は既定値。
func toVec3(values []float64, fallback mmath.Vec3) (mmath.Vec3, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 3:
		return mmath.NewVec3(values[0], values[1], values[2]), nil
	default:
		return fallback, fmt.Errorf("要素数は3つ必要です: got=%d", len(values))
	}
}

func fromVec3(v mmath.Vec3) []float64 {
	return []float64{v.X, v.Y, v.Z}
}

// toQuat は [w, x, y, z] の配列をクォータニオンへ変換する。空の場合は恒等。
func toQuat(values []float64) (mgl64.Quat, error) {
	switch len(values) {
	case 0:
		return mgl64.QuatIdent(), nil
	case 4:
		return mgl64.Quat{W: values[0], V: mgl64.Vec3{values[1], values[2], values[3]}}, nil
	default:
		return mgl64.QuatIdent(), fmt.Errorf("要素数は4つ必要です: got=%d", len(values))
	}
}

func fromQuat(q mgl64.Quat) []float64 {
	return []float64{q.W, q.V[0], q.V[1], q.V[2]}
}

// toMat4 は列優先16要素の配列を行列へ変換する。空の場合は既定値。
func toMat4(values []float64, fallback mgl64.Mat4) (mgl64.Mat4, error) {
	switch len(values) {
	case 0:
		return fallback, nil
	case 16:
		var m mgl64.Mat4
		copy(m[:], values)
		return m, nil
	default:
		return fallback, fmt.Errorf("要素数は16必要です: got=%d", len(values))
	}
}

func fromMat4(m mgl64.Mat4) []float64 {
	values := make([]float64, 16)
	copy(values, m[:])
	return values
}
