package ingest

import (
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/chocoworld/chocochat/engine/domain"
)

func TestGenerateFAQs(t *testing.T) {
	faqs := GenerateFAQs(rand.New(rand.NewSource(42)), 300)
	if len(faqs) != 300 {
		t.Fatalf("got %d faqs, want 300", len(faqs))
	}
	for i, u := range faqs {
		if u.Kind != domain.KindFAQ {
			t.Fatalf("faq %d kind = %q", i, u.Kind)
		}
		if u.Attrs[domain.AttrFAQID] != strconv.Itoa(i+1) {
			t.Fatalf("faq %d id = %q", i, u.Attrs[domain.AttrFAQID])
		}
		if u.Attrs[domain.AttrCategory] != "일반" {
			t.Fatalf("faq %d category = %q", i, u.Attrs[domain.AttrCategory])
		}
		if !strings.HasPrefix(u.Text, "❓ 질문: ") || !strings.Contains(u.Text, "\n📝 답변: ") {
			t.Fatalf("faq %d text malformed: %q", i, u.Text)
		}
		if err := domain.ValidateUnit(u); err != nil {
			t.Fatalf("faq %d invalid: %v", i, err)
		}
	}
}

func TestGenerateFAQs_SeededReproducible(t *testing.T) {
	a := GenerateFAQs(rand.New(rand.NewSource(7)), 20)
	b := GenerateFAQs(rand.New(rand.NewSource(7)), 20)
	for i := range a {
		if a[i].Text != b[i].Text {
			t.Fatalf("faq %d differs between seeded runs", i)
		}
	}
}

func TestWriteFAQJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faqs.json")
	units := GenerateFAQs(rand.New(rand.NewSource(3)), 5)
	// Non-FAQ units must be ignored.
	units = append(units, domain.Unit{Text: "product", Kind: domain.KindProduct})

	if err := WriteFAQJSON(path, units); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var entries []struct {
		Question string `json:"question"`
		Answer   string `json:"answer"`
		Metadata struct {
			Type     string `json:"type"`
			FAQID    int    `json:"faq_id"`
			Category string `json:"category"`
		} `json:"metadata"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("got %d entries, want 5", len(entries))
	}
	for i, e := range entries {
		if e.Metadata.Type != "faq" || e.Metadata.FAQID != i+1 || e.Metadata.Category != "일반" {
			t.Errorf("entry %d metadata = %+v", i, e.Metadata)
		}
		if e.Question == "" || !strings.HasSuffix(e.Answer, "확인하실 수 있습니다.") {
			t.Errorf("entry %d question/answer malformed: %+v", i, e)
		}
		if strings.Contains(e.Question, "❓") || strings.Contains(e.Answer, "📝") {
			t.Errorf("entry %d still carries markers: %+v", i, e)
		}
	}
}
