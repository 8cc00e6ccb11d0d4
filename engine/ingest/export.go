package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chocoworld/chocochat/engine/domain"
)

type faqMetadata struct {
	Type     string `json:"type"`
	FAQID    int    `json:"faq_id"`
	Category string `json:"category"`
}

type faqEntry struct {
	Question string      `json:"question"`
	Answer   string      `json:"answer"`
	Metadata faqMetadata `json:"metadata"`
}

// WriteFAQJSON exports FAQ units to a JSON file for inspection. Non-FAQ units
// are skipped, so the whole corpus can be passed in.
func WriteFAQJSON(path string, units []domain.Unit) error {
	entries := make([]faqEntry, 0, len(units))
	for _, u := range units {
		if u.Kind != domain.KindFAQ {
			continue
		}
		lines := strings.SplitN(u.Text, "\n", 2)
		question, answer := "", ""
		if len(lines) > 0 {
			question = strings.TrimSpace(strings.TrimPrefix(lines[0], "❓ 질문: "))
		}
		if len(lines) > 1 {
			answer = strings.TrimSpace(strings.TrimPrefix(lines[1], "📝 답변: "))
		}
		id, _ := strconv.Atoi(u.Attr(domain.AttrFAQID))
		entries = append(entries, faqEntry{
			Question: question,
			Answer:   answer,
			Metadata: faqMetadata{
				Type:     string(domain.KindFAQ),
				FAQID:    id,
				Category: u.Attr(domain.AttrCategory),
			},
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("ingest: marshal faqs: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ingest: write %s: %w", path, err)
	}
	return nil
}
