package nlp

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"NewsScanner/internal/config"
	"NewsScanner/internal/ports"
)

var (
	wordExpr     = regexp.MustCompile(`\pL+`)
	sentenceExpr = regexp.MustCompile(`[.!?]`)
)

// stopwords is a basic Indonesian stop-word list.
var stopwords = toSet(
	"yang", "dan", "di", "ke", "dari", "adalah", "untuk", "pada", "dengan",
	"dalam", "tidak", "atau", "ini", "itu", "akan", "sudah", "juga", "ada",
	"oleh", "karena", "secara", "saat", "setelah", "hingga", "tetapi",
	"namun", "kalau", "jika", "maka", "sementara", "sedang", "pernah",
	"telah", "bisa", "dapat", "harus", "boleh", "perlu", "semua", "setiap",
	"masing", "tiap", "satu", "dua", "lebih", "banyak", "sangat", "hanya",
	"selalu", "sering", "kadang", "paling", "terlalu", "cukup", "masih",
	"lagi", "sama", "seperti", "antara", "tentang", "terhadap",
	"menurut", "berdasarkan", "melalui", "kepada", "bagi", "atas", "bawah",
	"sebelum", "sesudah", "selama", "kerana", "sebagai", "bahwa", "sehingga",
	"mana", "apa", "siapa", "dimana", "kapan", "bagaimana", "mengapa",
	"tapi", "begitu", "lalu", "pun", "ya", "oh", "oke", "ayo", "hey",
	"nya", "kita", "mereka", "dia", "saya", "aku", "mu", "tu",
	"kami", "kalian", "ia", "hal", "bagai", "sebuah", "suatu",
)

// remnants are tokens left over from URLs and markup in scraped text.
var remnants = toSet("http", "https", "www", "com", "html", "htm", "php", "href", "nbsp", "amp", "quot")

// TFIDF ranks keyword phrases by mean TF-IDF weight over the sentences of one document.
type TFIDF struct {
	cfg config.TopicsConfig
}

var _ ports.TopicExtractor = (*TFIDF)(nil)

// NewTFIDF builds the extractor; phrases are title-cased with Indonesian rules.
func NewTFIDF(cfg config.TopicsConfig) *TFIDF {
	return &TFIDF{cfg: cfg}
}

// Topics returns up to n title-cased unigram or bigram phrases.
func (t *TFIDF) Topics(text string, n int) []string {
	if n <= 0 {
		return nil
	}
	clean := strings.ToLower(strings.Join(strings.Fields(text), " "))

	words := t.tokens(clean)
	if len(words) < 3 {
		return nil
	}

	var sentences [][]string
	for _, s := range sentenceExpr.Split(clean, -1) {
		s = strings.TrimSpace(s)
		if len([]rune(s)) > t.cfg.MinSentenceLength {
			sentences = append(sentences, terms(t.tokens(s)))
		}
	}

	var ranked []string
	if len(sentences) < 2 {
		ranked = byFrequency(words)
	} else {
		ranked = t.byMeanWeight(sentences)
	}

	title := cases.Title(language.Indonesian)
	out := make([]string, 0, n)
	for _, term := range ranked {
		if len(out) == n {
			break
		}
		if hasRemnant(term) {
			continue
		}
		out = append(out, title.String(term))
	}
	return out
}

func (t *TFIDF) tokens(s string) []string {
	var out []string
	for _, w := range wordExpr.FindAllString(s, -1) {
		if len([]rune(w)) < t.cfg.MinWordLength {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out = append(out, w)
	}
	return out
}

// byMeanWeight scores each sentence as a document: raw counts times smoothed idf,
// L2-normalised per sentence, then averaged over all sentences.
func (t *TFIDF) byMeanWeight(sentences [][]string) []string {
	counts := make([]map[string]int, len(sentences))
	corpus := map[string]int{}
	df := map[string]int{}
	for i, doc := range sentences {
		counts[i] = map[string]int{}
		for _, term := range doc {
			counts[i][term]++
			corpus[term]++
		}
		for term := range counts[i] {
			df[term]++
		}
	}

	vocab := make([]string, 0, len(corpus))
	for term := range corpus {
		vocab = append(vocab, term)
	}
	sort.Slice(vocab, func(i, j int) bool {
		if corpus[vocab[i]] != corpus[vocab[j]] {
			return corpus[vocab[i]] > corpus[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	if t.cfg.MaxFeatures > 0 && len(vocab) > t.cfg.MaxFeatures {
		vocab = vocab[:t.cfg.MaxFeatures]
	}

	n := float64(len(sentences))
	idf := make(map[string]float64, len(vocab))
	for _, term := range vocab {
		idf[term] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	mean := make(map[string]float64, len(vocab))
	for _, row := range counts {
		var norm float64
		weights := make(map[string]float64, len(row))
		for term, c := range row {
			w, ok := idf[term]
			if !ok {
				continue
			}
			weights[term] = float64(c) * w
			norm += weights[term] * weights[term]
		}
		if norm == 0 {
			continue
		}
		norm = math.Sqrt(norm)
		for term, w := range weights {
			mean[term] += w / norm / n
		}
	}

	sort.Slice(vocab, func(i, j int) bool {
		if mean[vocab[i]] != mean[vocab[j]] {
			return mean[vocab[i]] > mean[vocab[j]]
		}
		return vocab[i] < vocab[j]
	})
	return vocab
}

// byFrequency orders unigrams by count, first occurrence breaking ties.
func byFrequency(words []string) []string {
	counts := map[string]int{}
	var order []string
	for _, w := range words {
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	return order
}

// terms expands tokens into unigrams followed by adjacent bigrams.
func terms(tokens []string) []string {
	out := append([]string(nil), tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		out = append(out, tokens[i]+" "+tokens[i+1])
	}
	return out
}

func hasRemnant(term string) bool {
	for _, part := range strings.Fields(term) {
		if _, ok := remnants[part]; ok {
			return true
		}
	}
	return false
}

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
