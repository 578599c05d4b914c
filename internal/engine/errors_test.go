package engine

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benzoXdev/obfushtml/internal/jsobf"
)

func TestBlockError(t *testing.T) {
	cause := errors.New("SyntaxError: Unexpected token")
	err := &BlockError{Index: 2, Offset: 140, Engine: "node", Err: cause}
	assert.Equal(t, "block 2 at offset 140: node: SyntaxError: Unexpected token", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestOutputWriteErrorUnwrap(t *testing.T) {
	err := &OutputWriteError{Path: "dist/out.html", Op: "write", Err: os.ErrPermission}
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), "dist/out.html")
}

func TestErrorHint(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("input: %w", &InputNotFoundError{Path: "x.html"}), "input path"},
		{&UsageError{Msg: "expected <input> <output>, got 0 argument(s)"}, "obfushtml page.html"},
		{&OutputWriteError{Path: "o", Op: "mkdir", Err: os.ErrPermission}, "writable"},
		{fmt.Errorf("%w: hint", jsobf.ErrNoEngine), "-bundle"},
		{errors.New("bundle x.js does not define JavaScriptObfuscator"), "index.browser.js"},
		{errors.New("file too large (1 bytes, max 0)"), "safety limit"},
		{errors.New("invalid engine: v8 (auto|goja|node)"), "auto, goja, node"},
		{errors.New("something else"), ""},
	}
	for _, tt := range tests {
		got := ErrorHint(tt.err)
		if tt.want == "" {
			assert.Empty(t, got, "%v", tt.err)
			continue
		}
		assert.Contains(t, got, tt.want, "%v", tt.err)
	}
}
