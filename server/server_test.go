package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// runSession feeds request lines to a fresh server and returns the
// responses in order.
func runSession(t *testing.T, lines ...string) []testResponse {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	srv := New(in, &out, nil)
	require.NoError(t, srv.Run(context.Background()))

	var responses []testResponse
	scanner := bufio.NewScanner(&out)
	scanner.Buffer(make([]byte, 64*1024), maxMessageSize)
	for scanner.Scan() {
		var resp testResponse
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &resp))
		responses = append(responses, resp)
	}
	return responses
}

func callResult(t *testing.T, resp testResponse) toolResult {
	t.Helper()
	require.Nil(t, resp.Error, "unexpected rpc error: %+v", resp.Error)
	var res toolResult
	require.NoError(t, json.Unmarshal(resp.Result, &res))
	require.NotEmpty(t, res.Content)
	return res
}

func TestInitializeHandshake(t *testing.T) {
	resps := runSession(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
	)
	require.Len(t, resps, 1)
	var init struct {
		ProtocolVersion string `json:"protocolVersion"`
		ServerInfo      struct {
			Name string `json:"name"`
		} `json:"serverInfo"`
	}
	require.NoError(t, json.Unmarshal(resps[0].Result, &init))
	assert.Equal(t, protocolVersion, init.ProtocolVersion)
	assert.Equal(t, serverName, init.ServerInfo.Name)
}

func TestToolsListExposesFullToolSet(t *testing.T) {
	resps := runSession(t, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Len(t, resps, 1)
	var listing struct {
		Tools []struct {
			Name        string          `json:"name"`
			InputSchema json.RawMessage `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resps[0].Result, &listing))

	var names []string
	for _, tool := range listing.Tools {
		names = append(names, tool.Name)
		assert.True(t, json.Valid(tool.InputSchema), "schema for %s", tool.Name)
	}
	assert.Equal(t, []string{
		"create_presentation",
		"extract_text_inventory",
		"apply_text_replacements",
		"rearrange_slides",
		"create_thumbnail_grid",
		"unpack_office_document",
		"pack_office_document",
		"validate_office_document",
	}, names)
}

func TestUnknownMethod(t *testing.T) {
	resps := runSession(t, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, codeMethodNotFound, resps[0].Error.Code)
}

func TestParseErrorOnGarbage(t *testing.T) {
	resps := runSession(t, `{not json`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, codeParseError, resps[0].Error.Code)
}

func TestCreateThenInventory(t *testing.T) {
	deck := filepath.Join(t.TempDir(), "deck.pptx")
	create := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_presentation","arguments":{"spec":{"layout":"16:9","slides":[{"shapes":[{"type":"textbox","text":"Quarterly report"}]}]},"output_path":%q}}}`, deck)
	extract := fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"extract_text_inventory","arguments":{"file_path":%q}}}`, deck)

	resps := runSession(t, create, extract)
	require.Len(t, resps, 2)

	created := callResult(t, resps[0])
	assert.False(t, created.IsError)
	assert.Contains(t, created.Content[0].Text, "1 slides")

	inv := callResult(t, resps[1])
	assert.False(t, inv.IsError)
	assert.Contains(t, inv.Content[0].Text, `"slide-0"`)
	assert.Contains(t, inv.Content[0].Text, "Quarterly report")
}

func TestCallRejectsArgumentsViolatingSchema(t *testing.T) {
	resps := runSession(t,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_presentation","arguments":{"spec":{}}}}`)
	require.Len(t, resps, 1)
	res := callResult(t, resps[0])
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "output_path")
}

func TestCallUnknownTool(t *testing.T) {
	resps := runSession(t,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"delete_everything","arguments":{}}}`)
	require.Len(t, resps, 1)
	require.NotNil(t, resps[0].Error)
	assert.Equal(t, codeInvalidParams, resps[0].Error.Code)
}

func TestToolFailureReportedInResult(t *testing.T) {
	resps := runSession(t,
		`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"extract_text_inventory","arguments":{"file_path":"/nonexistent/deck.pptx"}}}`)
	require.Len(t, resps, 1)
	res := callResult(t, resps[0])
	assert.True(t, res.IsError)
}

func TestUnpackValidatePackViaTools(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	unpacked := filepath.Join(dir, "unpacked")
	repacked := filepath.Join(dir, "repacked.pptx")

	resps := runSession(t,
		fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_presentation","arguments":{"spec":{"layout":"4:3","slides":[{"shapes":[{"type":"textbox","text":"hi"}]}]},"output_path":%q}}}`, deck),
		fmt.Sprintf(`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"unpack_office_document","arguments":{"file_path":%q,"output_dir":%q}}}`, deck, unpacked),
		fmt.Sprintf(`{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"validate_office_document","arguments":{"unpacked_dir":%q,"doc_type":".pptx"}}}`, unpacked),
		fmt.Sprintf(`{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"pack_office_document","arguments":{"input_dir":%q,"output_path":%q}}}`, unpacked, repacked),
	)
	require.Len(t, resps, 4)
	for i, resp := range resps {
		res := callResult(t, resp)
		assert.False(t, res.IsError, "call %d: %s", i+1, res.Content[0].Text)
	}
	assert.Contains(t, callResult(t, resps[2]).Content[0].Text, `"all_passed": true`)
}
