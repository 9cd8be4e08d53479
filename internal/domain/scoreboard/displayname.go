package scoreboard

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/okian/nbtscore/internal/domain/nbt"
)

// displayText flattens a DisplayName tag to plain text. Files written since
// 1.13 hold a JSON text component in a String tag; newer ones may hold the
// component as a Compound. Anything that does not parse is kept verbatim.
func displayText(t nbt.Tag) string {
	switch v := t.(type) {
	case nbt.String:
		return plainText(string(v))
	case *nbt.Compound:
		var b strings.Builder
		flattenTag(&b, v)
		return b.String()
	case *nbt.List:
		var b strings.Builder
		flattenTag(&b, v)
		return b.String()
	default:
		return ""
	}
}

func plainText(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return raw
	}
	switch s[0] {
	case '"':
		var text string
		if err := json.Unmarshal([]byte(s), &text); err == nil {
			return text
		}
	case '{', '[':
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			var b strings.Builder
			flattenJSON(&b, v)
			if b.Len() > 0 {
				return b.String()
			}
		}
	}
	return raw
}

func flattenJSON(b *strings.Builder, v any) {
	switch t := v.(type) {
	case string:
		b.WriteString(t)
	case float64:
		b.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		b.WriteString(strconv.FormatBool(t))
	case []any:
		for _, e := range t {
			flattenJSON(b, e)
		}
	case map[string]any:
		if text, ok := t["text"].(string); ok {
			b.WriteString(text)
		} else if key, ok := t["translate"].(string); ok {
			b.WriteString(key)
		}
		if extra, ok := t["extra"].([]any); ok {
			for _, e := range extra {
				flattenJSON(b, e)
			}
		}
	}
}

func flattenTag(b *strings.Builder, t nbt.Tag) {
	switch v := t.(type) {
	case nbt.String:
		b.WriteString(string(v))
	case *nbt.List:
		for _, e := range v.Items() {
			flattenTag(b, e)
		}
	case *nbt.Compound:
		if text, ok := nbt.Lookup[nbt.String](v, "text"); ok {
			b.WriteString(string(text))
		} else if key, ok := nbt.Lookup[nbt.String](v, "translate"); ok {
			b.WriteString(string(key))
		}
		if extra, ok := nbt.Lookup[*nbt.List](v, "extra"); ok {
			flattenTag(b, extra)
		}
	}
}
