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

	"github.com/roach88/craftledger/internal/ledger"
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

func TestOutputFormatter_RenderText(t *testing.T) {
	buf := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:    "text",
		Writer:    buf,
		ErrWriter: errBuf,
		Verbose:   true,
	}

	err := formatter.Render(struct{}{}, "req-0001", func(w io.Writer) {
		fmt.Fprintln(w, "hello")
	})
	require.NoError(t, err)
	assert.Equal(t, "hello\n", buf.String())
	assert.Equal(t, "request req-0001\n", errBuf.String())
}

func TestOutputFormatter_RenderJSONCarriesRequestID(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Render(map[string]int{"n": 1}, "req-0001", func(io.Writer) {
		t.Fatal("text renderer called in json mode")
	})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "req-0001", resp.TraceID)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("E001", "bad flags", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "E001", resp.Error.Code)
	assert.Equal(t, "bad flags", resp.Error.Message)
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Error("E002", "config missing", map[string]string{"path": "x.yaml"})
	require.NoError(t, err)
	assert.Equal(t, "Error [E002]: config missing\n", buf.String())
}

func TestOutputFormatter_VerboseTextErrorShowsDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	err := formatter.Error("E002", "config missing", "x.yaml")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Details: x.yaml")
}

func TestOutputFormatter_FailLedgerError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	lerr := &ledger.Error{
		Code:      ledger.CodeInsufficientMaterial,
		Message:   "not enough Wood: needed 9, available 4",
		Kind:      "material",
		Item:      "Wood",
		Needed:    9,
		Available: 4,
	}
	err := formatter.Fail(ErrCodeInternal, "craft failed", lerr)

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.True(t, ledger.IsCode(err, ledger.CodeInsufficientMaterial))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "E105", resp.Error.Code)
	assert.Equal(t, "not enough Wood: needed 9, available 4", resp.Error.Message)
	assert.Equal(t, "INSUFFICIENT_MATERIAL", resp.Error.Details["ledger_code"])
	assert.Equal(t, "Wood", resp.Error.Details["item"])
	assert.Equal(t, 9.0, resp.Error.Details["needed"])
	assert.Equal(t, 4.0, resp.Error.Details["available"])
}

func TestOutputFormatter_FailStorageIsCommandError(t *testing.T) {
	formatter := &OutputFormatter{Format: "text", Writer: io.Discard}

	err := formatter.Fail(ErrCodeInternal, "craft failed", &ledger.Error{
		Code:    ledger.CodeStorageUnavailable,
		Message: "storage unavailable",
	})
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOutputFormatter_FailOtherError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Fail(ErrCodeConfig, "failed to load config", errors.New("no such file"))
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.True(t, IsReported(err))
	assert.Equal(t, "Error [E002]: failed to load config: no such file\n", buf.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("wrapped: %w", NewExitError(ExitFailure, "x"))))
	assert.False(t, IsReported(NewExitError(ExitFailure, "x")))
}

func TestExitError_Message(t *testing.T) {
	assert.Equal(t, "bad", NewExitError(ExitFailure, "bad").Error())
	assert.Equal(t, "open: boom", WrapExitError(ExitFailure, "open", errors.New("boom")).Error())
}
