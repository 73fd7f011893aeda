package typesense

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	httpclient "github.com/trix-studio/trix/pkg/trix/helpers/httpclient"
	"github.com/trix-studio/trix/pkg/trix/models"
)

const (
	defaultCollection    = "trix_designs"
	defaultDetailBaseURL = "http://localhost:8000/designs"
	defaultLanguage      = "en"
	defaultItemPriority  = 1
)

// ErrDisabled is returned when Typesense configuration is missing.
var ErrDisabled = errors.New("typesense indexing disabled: missing endpoint, api key or collection name")

type config struct {
	endpoint       string
	apiKey         string
	collection     string
	detailBaseURL  string
	language       string
	itemPriority   int
	defaultTags    []string
	featureEnabled bool
}

func loadConfigFromEnv() config {
	endpoint := strings.TrimSpace(os.Getenv("TYPESENSE_ENDPOINT"))
	if endpoint == "" {
		endpoint = strings.TrimSpace(os.Getenv("TYPESENSE_BASE_URL"))
	}

	collection := strings.TrimSpace(os.Getenv("TYPESENSE_COLLECTION"))
	if collection == "" {
		collection = defaultCollection
	}

	detailBase := strings.TrimSpace(os.Getenv("TYPESENSE_DETAIL_BASE_URL"))
	if detailBase == "" {
		detailBase = defaultDetailBaseURL
	}

	language := strings.TrimSpace(os.Getenv("TYPESENSE_LANGUAGE"))
	if language == "" {
		language = defaultLanguage
	}

	itemPriority := defaultItemPriority
	if raw := strings.TrimSpace(os.Getenv("TYPESENSE_ITEM_PRIORITY")); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			itemPriority = v
		}
	}

	return config{
		endpoint:       endpoint,
		apiKey:         strings.TrimSpace(os.Getenv("TYPESENSE_API_KEY")),
		collection:     collection,
		detailBaseURL:  detailBase,
		language:       language,
		itemPriority:   itemPriority,
		defaultTags:    parseDefaultTags(),
		featureEnabled: isFeatureEnabled(),
	}
}

func (c config) enabled() bool {
	return c.featureEnabled && c.endpoint != "" && c.apiKey != "" && c.collection != ""
}

func (c config) documentsURL() string {
	return fmt.Sprintf("%s/collections/%s/documents", strings.TrimRight(c.endpoint, "/"), url.PathEscape(c.collection))
}

func isFeatureEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ENABLE_TYPESENSE"))) {
	case "0", "false", "no", "off":
		return false
	default:
		return true
	}
}

// Enabled reports whether Typesense indexing is active based on env vars.
func Enabled() bool {
	return loadConfigFromEnv().enabled()
}

func parseDefaultTags() []string {
	raw := os.Getenv("TYPESENSE_DEFAULT_TAGS")
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"trix", "design"}
	}
	return out
}

// PublishDesign upserts a published design into the search collection.
func PublishDesign(ctx context.Context, d *models.Design, imageURL string) error {
	if d == nil {
		return fmt.Errorf("typesense: design is nil")
	}

	cfg := loadConfigFromEnv()
	if !cfg.enabled() {
		return ErrDisabled
	}

	payload, err := json.Marshal(buildDocument(cfg, d, imageURL))
	if err != nil {
		return fmt.Errorf("typesense: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.documentsURL()+"?action=upsert", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("typesense: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return send(cfg, req)
}

// RemoveDesign deletes the document of a design. A missing document is not an error.
func RemoveDesign(ctx context.Context, designID uint) error {
	cfg := loadConfigFromEnv()
	if !cfg.enabled() {
		return ErrDisabled
	}

	target := fmt.Sprintf("%s/%s", cfg.documentsURL(), documentID(designID))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return fmt.Errorf("typesense: create request: %w", err)
	}
	return send(cfg, req)
}

func send(cfg config, req *http.Request) error {
	req.Header.Set("X-TYPESENSE-API-KEY", cfg.apiKey)

	resp, err := httpclient.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("typesense: request failed: %w", err)
	}
	defer resp.Body.Close()

	if req.Method == http.MethodDelete && resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("typesense: %s failed with status %d: %s", req.Method, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func documentID(designID uint) string {
	return "design-" + strconv.FormatUint(uint64(designID), 10)
}

func buildDocument(cfg config, d *models.Design, imageURL string) map[string]any {
	doc := map[string]any{
		"id":            documentID(d.ID),
		"type":          "design",
		"language":      cfg.language,
		"item_priority": cfg.itemPriority,
		"created_at":    d.CreatedAt.Unix(),
		"likes_count":   d.LikesCount,
	}

	detailBase := strings.TrimRight(cfg.detailBaseURL, "/")
	if detailBase != "" {
		detailURL := fmt.Sprintf("%s/%d", detailBase, d.ID)
		doc["url"] = detailURL
		doc["url_without_anchor"] = detailURL
		doc["anchor"] = nil
	}

	if title := strings.TrimSpace(d.Title); title != "" {
		doc["hierarchy.lvl0"] = title
	}
	if style := strings.TrimSpace(d.Style); style != "" {
		doc["hierarchy.lvl1"] = style
	}
	if d.User != nil && d.User.Username != "" {
		doc["hierarchy.lvl2"] = d.User.Username
	}
	if imageURL != "" {
		doc["image_url"] = imageURL
	}
	if token := d.Token(); token != "" {
		doc["token_id"] = token
	}

	if content := buildContent(d); content != "" {
		doc["content"] = content
	}
	doc["tags"] = buildTags(cfg, d)

	return doc
}

func buildContent(d *models.Design) string {
	parts := make([]string, 0, 3)
	if desc := strings.TrimSpace(d.Description); desc != "" {
		parts = append(parts, desc)
	}
	if prompt := strings.TrimSpace(d.Prompt); prompt != "" {
		parts = append(parts, fmt.Sprintf("Prompt: %s", prompt))
	}
	if model := strings.TrimSpace(d.ModelUsed); model != "" {
		parts = append(parts, fmt.Sprintf("Model: %s", model))
	}
	if len(parts) == 0 {
		return strings.TrimSpace(d.Title)
	}
	return strings.Join(parts, "\n\n")
}

func buildTags(cfg config, d *models.Design) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, len(cfg.defaultTags)+4)

	for _, tag := range cfg.defaultTags {
		out = appendUnique(out, tag, seen)
	}
	for _, tag := range d.TagList() {
		out = appendUnique(out, tag, seen)
	}
	if d.Style != "" {
		out = appendUnique(out, fmt.Sprintf("style:%s", d.Style), seen)
	}
	return out
}

func appendUnique(tags []string, value string, seen map[string]struct{}) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return tags
	}
	if _, ok := seen[value]; ok {
		return tags
	}
	seen[value] = struct{}{}
	return append(tags, value)
}
