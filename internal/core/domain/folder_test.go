package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFolder_Validate(t *testing.T) {
	valid := Folder{Name: "Camera", Path: "/sdcard/DCIM", MediaType: MediaAll}
	assert.NoError(t, valid.Validate())

	noName := valid
	noName.Name = "  "
	assert.ErrorIs(t, noName.Validate(), ErrInvalidInput)

	noPath := valid
	noPath.Path = ""
	assert.ErrorIs(t, noPath.Validate(), ErrInvalidInput)

	badType := valid
	badType.MediaType = "audio"
	assert.ErrorIs(t, badType.Validate(), ErrInvalidInput)
}
