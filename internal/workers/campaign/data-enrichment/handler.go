// internal/workers/campaign/data-enrichment/handler.go
package dataenrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	apperrors "campaign-orchestrator/internal/common/errors"
	httpclient "campaign-orchestrator/internal/common/http"
	"campaign-orchestrator/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const (
	TaskType = "data-enrichment"

	maxTrendingKeywords = 15
	maxKeywordsPerVideo = 10
)

var (
	ErrEnrichmentTimeout   = fmt.Errorf("DATA_ENRICHMENT_TIMEOUT: %w", apperrors.ErrCollaboratorTimeout)
	ErrEnrichmentFailed    = fmt.Errorf("DATA_ENRICHMENT_FAILED: %w", apperrors.ErrCollaboratorUnavailable)
	ErrEnrichmentMalformed = fmt.Errorf("DATA_ENRICHMENT_MALFORMED: %w", apperrors.ErrMalformedOutput)
	ErrEmptyQuery          = errors.New("EMPTY_QUERY")
)

var (
	videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	whitespace     = regexp.MustCompile(`\s+`)
)

var stopWords = map[string]bool{
	"the": true, "and": true, "or": true, "but": true, "in": true, "on": true, "at": true,
	"to": true, "for": true, "of": true, "with": true, "by": true, "a": true, "an": true,
	"is": true, "are": true, "was": true, "were": true, "be": true, "been": true, "have": true,
	"has": true, "had": true, "do": true, "does": true, "did": true, "will": true, "would": true,
	"could": true, "should": true, "this": true, "that": true, "your": true, "from": true,
}

var themeIndicators = []struct {
	theme string
	words []string
}{
	{"tutorial", []string{"how", "tutorial", "guide", "learn", "tips"}},
	{"review", []string{"review", "unboxing", "test", "comparison"}},
	{"entertainment", []string{"funny", "comedy", "entertaining", "fun"}},
	{"lifestyle", []string{"lifestyle", "daily", "vlog", "routine"}},
	{"tech", []string{"tech", "technology", "gadget", "device", "innovation"}},
	{"music", []string{"music", "song", "audio", "sound", "beats"}},
}

type Logger interface {
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
	With(fields map[string]interface{}) Logger
}

type Handler struct {
	config *Config
	client *httpclient.Client
	logger Logger
}

func NewHandler(config *Config, log Logger) *Handler {
	return &Handler{
		config: config,
		client: httpclient.NewClient(config.Timeout),
		logger: log.With(map[string]interface{}{
			"taskType": TaskType,
		}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, fmt.Errorf("parse input: %w", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		h.failJob(client, job, err)
		return
	}
	h.completeJob(client, job, output)
}

// Execute performs one YouTube search. It is never retried.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()
	return h.execute(ctx, input)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	query := h.buildQuery(input)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	var resp searchResponse
	if err := h.client.DoJSON(ctx, "GET", h.buildSearchURL(query), nil, nil, &resp); err != nil {
		if httpclient.IsTimeout(ctx, err) {
			return nil, ErrEnrichmentTimeout
		}
		if errors.Is(err, httpclient.ErrDecode) {
			return nil, fmt.Errorf("%w: %v", ErrEnrichmentMalformed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrEnrichmentFailed, err)
	}

	result := processResults(&resp, query)

	h.logger.Info("data enrichment completed", map[string]interface{}{
		"query":        query,
		"videoCount":   len(result.Videos),
		"keywordCount": len(result.TrendingKeywords),
	})

	return &Output{Enrichment: result}, nil
}

// buildQuery is "{name} {category}" followed by up to MaxLabelTerms image
// labels that are not already part of the query.
func (h *Handler) buildQuery(input *Input) string {
	query := strings.TrimSpace(input.ProductName + " " + input.Category)
	lower := strings.ToLower(query)

	added := 0
	for _, l := range input.ImageLabels {
		if added == h.config.MaxLabelTerms {
			break
		}
		l = strings.TrimSpace(l)
		if l == "" || strings.Contains(lower, strings.ToLower(l)) {
			continue
		}
		query += " " + l
		lower += " " + strings.ToLower(l)
		added++
	}

	return whitespace.ReplaceAllString(strings.TrimSpace(query), " ")
}

func (h *Handler) buildSearchURL(query string) string {
	params := url.Values{}
	params.Add("part", "snippet")
	params.Add("type", "video")
	params.Add("q", query)
	params.Add("maxResults", strconv.Itoa(h.config.MaxResults))
	params.Add("safeSearch", "moderate")
	params.Add("order", "relevance")
	params.Add("key", h.config.YouTubeAPIKey)
	return strings.TrimRight(h.config.YouTubeBaseURL, "/") + "/search?" + params.Encode()
}

func processResults(resp *searchResponse, query string) *models.EnrichmentResult {
	terms := strings.Fields(strings.ToLower(query))
	videos := []models.TrendVideo{}
	var keywords []string

	for _, item := range resp.Items {
		if item.ID.Kind != "" && item.ID.Kind != "youtube#video" {
			continue
		}
		if !videoIDPattern.MatchString(item.ID.VideoID) {
			continue
		}
		s := item.Snippet
		videos = append(videos, models.TrendVideo{
			VideoID:        item.ID.VideoID,
			Title:          s.Title,
			Description:    s.Description,
			Channel:        s.ChannelTitle,
			URL:            "https://www.youtube.com/watch?v=" + item.ID.VideoID,
			RelevanceScore: relevanceScore(s.Title, s.Description, terms),
			PublishedAt:    s.PublishedAt,
		})
		keywords = append(keywords, extractKeywords(s.Title+" "+s.Description)...)
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].RelevanceScore > videos[j].RelevanceScore
	})

	return &models.EnrichmentResult{
		SearchQuery:      query,
		TotalResults:     resp.PageInfo.TotalResults,
		Videos:           videos,
		TrendingKeywords: trendingKeywords(keywords),
		ContentThemes:    contentThemes(videos),
	}
}

// relevanceScore gives +2 per query term in the title and +1 per term in
// the description.
func relevanceScore(title, description string, terms []string) int {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	score := 0
	for _, term := range terms {
		if strings.Contains(title, term) {
			score += 2
		}
		if strings.Contains(description, term) {
			score++
		}
	}
	return score
}

func extractKeywords(text string) []string {
	var out []string
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,!?:;\"'()[]|-#")
		if len(w) <= 3 || stopWords[w] {
			continue
		}
		out = append(out, w)
		if len(out) == maxKeywordsPerVideo {
			break
		}
	}
	return out
}

// trendingKeywords ranks by frequency; ties keep first-seen order.
func trendingKeywords(all []string) []models.KeywordCount {
	counts := map[string]int{}
	var order []string
	for _, k := range all {
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	out := make([]models.KeywordCount, 0, len(order))
	for _, k := range order {
		out = append(out, models.KeywordCount{Keyword: k, Frequency: counts[k]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Frequency > out[j].Frequency
	})
	if len(out) > maxTrendingKeywords {
		out = out[:maxTrendingKeywords]
	}
	return out
}

// contentThemes returns the themes present in the videos, most frequent first.
func contentThemes(videos []models.TrendVideo) []string {
	counts := map[string]int{}
	for _, v := range videos {
		words := map[string]bool{}
		for _, w := range strings.Fields(strings.ToLower(v.Title + " " + v.Description)) {
			words[strings.Trim(w, ".,!?:;\"'()")] = true
		}
		for _, ti := range themeIndicators {
			for _, ind := range ti.words {
				if words[ind] {
					counts[ti.theme]++
					break
				}
			}
		}
	}

	themes := []string{}
	for _, ti := range themeIndicators {
		if counts[ti.theme] > 0 {
			themes = append(themes, ti.theme)
		}
	}
	sort.SliceStable(themes, func(i, j int) bool {
		return counts[themes[i]] > counts[themes[j]]
	})
	return themes
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(context.Background()); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, err error) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":    job.Key,
		"error":     err.Error(),
		"errorCode": string(apperrors.Classify(err)),
	})

	_, _ = client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(0).
		ErrorMessage(err.Error()).
		Send(context.Background())
}
