package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("EMPTY_CART", "Your cart is empty", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "EMPTY_CART", resp.Error.Code)
	assert.Equal(t, "Your cart is empty", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := []string{"name", "price"}
	err := formatter.Error("VALIDATION_ERROR", "name is required", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("Wishlist cleared")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Wishlist cleared")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("NOT_FOUND", "Product not found in wishlist!", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [NOT_FOUND]")
	assert.Contains(t, buf.String(), "Product not found in wishlist!")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := []string{"commission"}
	err := formatter.Error("VALIDATION_ERROR", "commission must be between 0 and 100", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [VALIDATION_ERROR]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("storage: %s", "memory")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "storage: memory")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "ROLE_MISMATCH",
		Message: "role not allowed",
		Details: []string{"manager"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ROLE_MISMATCH", decoded.Code)
	assert.Equal(t, "role not allowed", decoded.Message)
}

func TestOutputFormatter_Render(t *testing.T) {
	t.Run("text calls the printer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}

		err := formatter.Render(map[string]int{"cart": 2}, func(w io.Writer) {
			_, _ = io.WriteString(w, "cart: 2\n")
		})
		require.NoError(t, err)
		assert.Equal(t, "cart: 2\n", buf.String())
	})

	t.Run("json ignores the printer", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}

		err := formatter.Render(map[string]int{"cart": 2}, func(w io.Writer) {
			t.Fatal("printer must not run for json")
		})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"ok","data":{"cart":2}}`, buf.String())
	})
}

func TestExitErrors(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", &ExitError{Code: ExitFailure, Message: "rejected", Reported: true})
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.True(t, Reported(wrapped))
	assert.False(t, Reported(NewExitError(ExitFailure, "not printed")))

	inner := errors.New("disk full")
	err := WrapExitError(ExitCommandError, "open storage", inner)
	assert.Equal(t, "open storage: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}
