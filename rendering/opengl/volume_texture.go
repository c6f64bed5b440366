package opengl

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"volumeviewer/core"
)

// VolumeTexture is the 3D texture holding a VolumeField on the GPU. Uploads
// replace the whole image; a failed version is not retried.
type VolumeTexture struct {
	id uint32

	field         *core.VolumeField
	version       uint64
	failedField   *core.VolumeField
	failedVersion uint64
	failedErr     error
}

func NewVolumeTexture() (*VolumeTexture, error) {
	vt := &VolumeTexture{}
	gl.GenTextures(1, &vt.id)
	if vt.id == 0 {
		return nil, &core.DeviceError{Op: "create volume texture", Code: gl.GetError()}
	}
	return vt, nil
}

// Sync uploads field if it is not the data currently on the GPU.
func (vt *VolumeTexture) Sync(field *core.VolumeField) error {
	if field == nil {
		return nil
	}
	if field == vt.field && field.Version() == vt.version {
		return nil
	}
	if field == vt.failedField && field.Version() == vt.failedVersion {
		return vt.failedErr
	}
	if err := vt.Upload(field); err != nil {
		vt.failedField, vt.failedVersion, vt.failedErr = field, field.Version(), err
		return err
	}
	return nil
}

// Upload pushes the whole sample buffer as an RGBA8 3D texture image with
// nearest filtering and generated mipmaps. The texture target is bound only
// for the duration of the upload.
func (vt *VolumeTexture) Upload(field *core.VolumeField) error {
	dims := field.Dimensions()
	data := field.Bytes()

	drainErrors()
	gl.BindTexture(gl.TEXTURE_3D, vt.id)
	defer gl.BindTexture(gl.TEXTURE_3D, 0)

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage3D(gl.TEXTURE_3D, 0, gl.RGBA8,
		int32(dims.X), int32(dims.Y), int32(dims.Z),
		0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(&data[0]))
	// Discrete samples: interpolation is the shader's business.
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_3D, gl.TEXTURE_WRAP_R, gl.CLAMP_TO_EDGE)
	gl.GenerateMipmap(gl.TEXTURE_3D)

	if err := checkError("upload volume " + dims.String()); err != nil {
		return err
	}
	vt.field, vt.version = field, field.Version()
	core.Logger().Debug("volume uploaded", "dims", dims.String(), "bytes", len(data), "version", vt.version)
	return nil
}

// Bind attaches the texture to the given texture unit for drawing.
func (vt *VolumeTexture) Bind(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_3D, vt.id)
}

func (vt *VolumeTexture) Release() {
	if vt.id != 0 {
		gl.DeleteTextures(1, &vt.id)
		vt.id = 0
	}
}

// checkError returns the first pending GL error as a DeviceError and clears
// the rest.
func checkError(op string) error {
	code := gl.GetError()
	if code == gl.NO_ERROR {
		return nil
	}
	drainErrors()
	return &core.DeviceError{Op: op, Code: code}
}

func drainErrors() {
	for gl.GetError() != gl.NO_ERROR {
	}
}
