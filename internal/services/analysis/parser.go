package analysis

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ternarybob/stockdash/internal/models"
	"github.com/tidwall/gjson"
)

// MalformedOutputMessage is the analysis_result.error text of an ErrorEnvelope.
const MalformedOutputMessage = "AI返回的结果不是有效的JSON格式"

// Parse classifies raw generator text. When the whole text is a JSON object it is
// returned unchanged with ok=true. Anything else becomes an ErrorEnvelope echoing
// groups followed by analysis_result, with ok=false.
func Parse(raw string, groups []models.Group) (payload json.RawMessage, ok bool, err error) {
	if isJSONObject(raw) {
		return json.RawMessage(raw), true, nil
	}

	envelope, err := buildEnvelope(raw, groups)
	if err != nil {
		return nil, false, err
	}
	return envelope, false, nil
}

func isJSONObject(raw string) bool {
	if !gjson.Valid(raw) {
		return false
	}
	return gjson.Parse(raw).IsObject()
}

// buildEnvelope writes the groups in order, then analysis_result. raw_text keeps
// the reply verbatim except that invalid UTF-8 sequences become U+FFFD.
func buildEnvelope(raw string, groups []models.Group) (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, g := range groups {
		if err := writeMember(&buf, g.Name, g.Value); err != nil {
			return nil, err
		}
		buf.WriteByte(',')
	}
	if err := writeMember(&buf, "analysis_result", models.EnvelopeError{
		Error:   MalformedOutputMessage,
		RawText: strings.ToValidUTF8(raw, "\uFFFD"),
	}); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return json.RawMessage(buf.Bytes()), nil
}

func writeMember(buf *bytes.Buffer, name string, value interface{}) error {
	key, err := json.Marshal(name)
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode envelope group %s: %w", name, err)
	}
	buf.Write(key)
	buf.WriteByte(':')
	buf.Write(data)
	return nil
}
