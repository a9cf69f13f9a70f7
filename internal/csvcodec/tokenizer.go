package csvcodec

import (
	"errors"
	"strings"
)

var (
	errUnbalancedQuote = errors.New("unbalanced quote")
	errStrayQuote      = errors.New("quote inside unquoted field")
	errAfterQuote      = errors.New("unexpected character after quoted field")
)

// splitRow разбивает одну строку CSV на поля. Поле в кавычках может содержать
// запятые и удвоенные кавычки; пробелы вокруг полей игнорируются.
func splitRow(line string) ([]string, error) {
	var fields []string
	i, n := 0, len(line)
	for {
		i = skipSpaces(line, i)
		if i < n && line[i] == '"' {
			var b strings.Builder
			i++
			closed := false
			for i < n {
				if line[i] == '"' {
					if i+1 < n && line[i+1] == '"' {
						b.WriteByte('"')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				b.WriteByte(line[i])
				i++
			}
			if !closed {
				return nil, errUnbalancedQuote
			}
			i = skipSpaces(line, i)
			if i < n && line[i] != ',' {
				return nil, errAfterQuote
			}
			fields = append(fields, b.String())
		} else {
			end := strings.IndexByte(line[i:], ',')
			if end < 0 {
				end = n
			} else {
				end += i
			}
			raw := line[i:end]
			if strings.Contains(raw, `"`) {
				return nil, errStrayQuote
			}
			fields = append(fields, strings.TrimSpace(raw))
			i = end
		}

		if i >= n {
			return fields, nil
		}
		// пропускаем запятую; запятая в конце строки даёт пустое последнее поле
		i++
		if i == n {
			return append(fields, ""), nil
		}
	}
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}
