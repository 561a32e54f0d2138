package apperror

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsSurviveWrapping(t *testing.T) {
	parse := fmt.Errorf("resolve: %w", &ConfigParseError{Path: ".embodyrc.yaml", Err: errors.New("bad indent")})
	var pe *ConfigParseError
	assert.ErrorAs(t, parse, &pe)
	assert.Equal(t, ".embodyrc.yaml", pe.Path)
	assert.Contains(t, parse.Error(), "parse config .embodyrc.yaml: bad indent")

	fsErr := fmt.Errorf("write fake source: %w", Filesystem("open", "/ro/Fakeuart.c", fs.ErrPermission))
	assert.ErrorIs(t, fsErr, fs.ErrPermission)
	var fe *FilesystemError
	assert.ErrorAs(t, fsErr, &fe)
	assert.Equal(t, "open", fe.Op)

	assert.ErrorIs(t, fmt.Errorf("%w: nil node", ErrInvalidDeclaration), ErrInvalidDeclaration)
}

func TestFilesystemNil(t *testing.T) {
	assert.NoError(t, Filesystem("stat", "x", nil))
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "invalid module name: name is empty", (&InvalidModuleNameError{}).Error())
	assert.Equal(t, `invalid module name "two words": must not contain whitespace`, (&InvalidModuleNameError{Name: "two words"}).Error())
	assert.Equal(t, "path conflict: out.c: declined", (&PathConflictError{Path: "out.c", Reason: "declined"}).Error())
}
