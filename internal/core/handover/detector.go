package handover

import (
	"encoding/json"
	"strings"
)

// Acknowledgement dikirim ke customer saat percakapan dialihkan ke CS manusia
const Acknowledgement = "Baik, permintaan Anda sudah kami teruskan ke tim customer service kami. Mohon tunggu sebentar, agen kami akan segera membalas pesan Anda."

// NeedsHandover reports whether message contains any trigger phrase,
// case-insensitively. Blank phrases are ignored.
func NeedsHandover(message string, phrases []string) bool {
	_, ok := MatchedPhrase(message, phrases)
	return ok
}

// MatchedPhrase returns the first trigger phrase found in message
func MatchedPhrase(message string, phrases []string) (string, bool) {
	if len(phrases) == 0 {
		return "", false
	}

	lower := strings.ToLower(message)
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if strings.Contains(lower, p) {
			return p, true
		}
	}
	return "", false
}

// ParsePhrases decodes the handover_keywords JSON column. It accepts a JSON
// array of strings or a single comma-separated string; anything else yields nil.
func ParsePhrases(raw []byte) []string {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return clean(list)
	}

	var csv string
	if err := json.Unmarshal(raw, &csv); err == nil {
		return clean(strings.Split(csv, ","))
	}

	return nil
}

func clean(in []string) []string {
	out := make([]string, 0, len(in))
	for _, p := range in {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
