package scoring

import (
	"context"
	"fmt"
	"math"
	"regexp"

	"golang.org/x/sync/errgroup"

	"interview-coach-backend/internal/domain"
)

const (
	similarityWeight   = 60
	lengthWeight       = 20
	starWeight         = 20
	fullLengthWords    = 150
	maxConcurrentEmbed = 4
)

var starPattern = regexp.MustCompile(`(?i)\b(situation|task|action|result)\b`)

// Embedder turns text into a dense vector.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingProviderError reports that the embedding provider was unreachable
// or answered with something that is not a usable vector.
type EmbeddingProviderError struct {
	Provider string
	Err      error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error {
	return e.Err
}

// Cosine returns the cosine similarity of a and b, 0 for empty, mismatched or zero vectors.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// EmbeddingScore combines similarity to the job text with answer length and
// STAR structure into a 0-100 score.
func EmbeddingScore(similarity float64, answer string) int {
	lengthScore := math.Max(0, math.Min(float64(len(words(answer)))/fullLengthWords, 1))
	starBonus := 0.0
	if starPattern.MatchString(answer) {
		starBonus = 1
	}
	return int(math.Round(similarity*similarityWeight + lengthScore*lengthWeight + starBonus*starWeight))
}

func embedOne(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	vec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, &EmbeddingProviderError{Provider: embedder.Name(), Err: err}
	}
	if len(vec) == 0 {
		return nil, &EmbeddingProviderError{Provider: embedder.Name(), Err: fmt.Errorf("empty embedding vector")}
	}
	for _, v := range vec {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, &EmbeddingProviderError{Provider: embedder.Name(), Err: fmt.Errorf("embedding vector contains non-finite values")}
		}
	}
	return vec, nil
}

// ScoreAnswersWithEmbeddings embeds the job text once and every answer
// concurrently. Any provider failure fails the whole call with an
// *EmbeddingProviderError and no partial result.
func ScoreAnswersWithEmbeddings(ctx context.Context, embedder Embedder, jobText string, answers []domain.EmbeddingAnswerInput) (domain.EmbeddingScoreResult, error) {
	jobVec, err := embedOne(ctx, embedder, jobText)
	if err != nil {
		return domain.EmbeddingScoreResult{}, err
	}

	vectors := make([][]float32, len(answers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentEmbed)
	for i, ans := range answers {
		i, ans := i, ans
		g.Go(func() error {
			vec, err := embedOne(gctx, embedder, ans.Answer)
			if err != nil {
				return err
			}
			if len(vec) != len(jobVec) {
				return &EmbeddingProviderError{
					Provider: embedder.Name(),
					Err:      fmt.Errorf("dimension mismatch (got %d want %d)", len(vec), len(jobVec)),
				}
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.EmbeddingScoreResult{}, err
	}

	result := domain.EmbeddingScoreResult{
		PerQuestion: make([]domain.EmbeddingQuestionScore, 0, len(answers)),
		Provider:    embedder.Name(),
	}
	total := 0
	for i, ans := range answers {
		sim := Cosine(jobVec, vectors[i])
		score := EmbeddingScore(sim, ans.Answer)
		total += score
		result.PerQuestion = append(result.PerQuestion, domain.EmbeddingQuestionScore{
			QuestionID: ans.QuestionID,
			Score:      score,
			Similarity: sim,
		})
	}
	if len(answers) > 0 {
		result.Overall = int(math.Round(float64(total) / float64(len(answers))))
	}
	return result, nil
}
