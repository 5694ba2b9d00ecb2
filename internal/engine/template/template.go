// internal/engine/template/template.go

// Package template renders alert message bodies by substituting {name}
// placeholders from a context map.
package template

import "fmt"

// Render replaces every occurrence of {name} in body with the stringified
// value from data. Unmatched placeholders are left as literal text; rendering
// never fails. Declared-but-unused variables are permitted.
func Render(body string, data map[string]interface{}) string {
	if len(data) == 0 {
		return body
	}

	out := make([]byte, 0, len(body))
	for i := 0; i < len(body); {
		if body[i] != '{' {
			out = append(out, body[i])
			i++
			continue
		}

		end := -1
		for j := i + 1; j < len(body); j++ {
			if body[j] == '}' {
				end = j
				break
			}
			if body[j] == '{' {
				break
			}
		}
		if end == -1 {
			out = append(out, body[i])
			i++
			continue
		}

		name := body[i+1 : end]
		if v, ok := data[name]; ok {
			out = append(out, stringify(v)...)
		} else {
			// unknown placeholder stays literal
			out = append(out, body[i:end+1]...)
		}
		i = end + 1
	}
	return string(out)
}

func stringify(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", t)
	}
}
