package kb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/wa-cs-chatbot-be/internal/modules/saas/models"
)

const (
	DefaultThreshold = 0.1
	DefaultLimit     = 5

	questionWeight      = 0.7
	answerWeight        = 0.2
	keywordBonus        = 0.3
	questionPhraseBonus = 0.4
	answerPhraseBonus   = 0.2
)

// Store is the persistence the matcher needs
type Store interface {
	ListActive(ctx context.Context, chatbotID uuid.UUID) ([]models.KnowledgeItem, error)
	IncrementUsage(ctx context.Context, ids []uuid.UUID) error
}

// Match is one scored knowledge item
type Match struct {
	Item  models.KnowledgeItem `json:"item"`
	Score float64              `json:"score"`
}

// Matcher scores knowledge items against inbound questions
type Matcher struct {
	store     Store
	threshold float64
	limit     int

	wg sync.WaitGroup
}

// NewMatcher creates a matcher. Non-positive limit or out-of-range threshold
// fall back to the defaults.
func NewMatcher(store Store, threshold float64, limit int) *Matcher {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultThreshold
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Matcher{store: store, threshold: threshold, limit: limit}
}

// Match returns the top active items scoring at least the threshold, best
// first, and bumps their usage counters in the background
func (m *Matcher) Match(ctx context.Context, chatbotID uuid.UUID, query string) ([]Match, error) {
	matches, err := m.Search(ctx, chatbotID, query)
	if err != nil || len(matches) == 0 {
		return matches, err
	}

	ids := make([]uuid.UUID, 0, len(matches))
	for _, mt := range matches {
		ids = append(ids, mt.Item.ID)
	}
	m.bumpUsage(ctx, ids)

	return matches, nil
}

// Search is Match without the usage side effect, for dashboard previews
func (m *Matcher) Search(ctx context.Context, chatbotID uuid.UUID, query string) ([]Match, error) {
	if strings.TrimSpace(query) == "" {
		return []Match{}, nil
	}

	items, err := m.store.ListActive(ctx, chatbotID)
	if err != nil {
		return nil, fmt.Errorf("failed to load knowledge items: %w", err)
	}

	matches := make([]Match, 0, len(items))
	for _, item := range items {
		if !item.IsActive {
			continue
		}
		if s := Score(query, item); s >= m.threshold {
			matches = append(matches, Match{Item: item, Score: s})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > m.limit {
		matches = matches[:m.limit]
	}
	return matches, nil
}

// Flush waits for pending usage updates
func (m *Matcher) Flush() {
	m.wg.Wait()
}

func (m *Matcher) bumpUsage(ctx context.Context, ids []uuid.UUID) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := m.store.IncrementUsage(bg, ids); err != nil {
			log.Warn().Err(err).Int("items", len(ids)).Msg("⚠️ Failed to increment knowledge usage")
		}
	}()
}

// Score rates item against query in [0, 1]
func Score(query string, item models.KnowledgeItem) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}
	question := strings.ToLower(strings.TrimSpace(item.Question))
	answer := strings.ToLower(strings.TrimSpace(item.Answer))

	qTokens := tokenize(q)
	score := questionWeight*overlap(qTokens, tokenize(question)) +
		answerWeight*overlap(qTokens, tokenize(answer))

	for _, kw := range item.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(q, kw) || strings.Contains(kw, q) {
			score += keywordBonus
			break
		}
	}

	if question != "" && (strings.Contains(q, question) || strings.Contains(question, q)) {
		score += questionPhraseBonus
	}
	if strings.Contains(answer, q) {
		score += answerPhraseBonus
	}

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

// BuildContext formats matches for the AI system prompt
func BuildContext(matches []Match) string {
	if len(matches) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, mt := range matches {
		sb.WriteString(fmt.Sprintf("Q: %s\nA: %s\n\n", mt.Item.Question, mt.Item.Answer))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// tokenize returns the set of lowercase words longer than two characters
func tokenize(s string) map[string]struct{} {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

// overlap is the Jaccard index of two token sets
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if _, ok := b[w]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
