package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"promoMarket/domain"
	"strings"
	"time"
)

type Config struct {
	ApiKey  string
	BaseURL string
	Model   string
}

type GeminiRepository struct {
	config Config
	client *http.Client
}

func NewGeminiRepository(cfg Config) *GeminiRepository {
	return &GeminiRepository{
		config: cfg,
		client: &http.Client{Timeout: 60 * time.Second},
	}
}

const systemPrompt = `Je bent een assistent die Belgische supermarktpromoties analyseert.
Je krijgt een JSON-lijst van producten met veldnamen "name", "discount" en "original_price".
Geef voor ELK product een JSON-object terug met exact deze velden:
- "clean_name": de nette productnaam zonder promotekst, hoofdletters genormaliseerd
- "category": exact een van: Groenten, Fruit, Vlees_Vis_Vega, Zuivel, Koolhydraten, Pantry, Snacks, Drinken, Huishouden, Overig
- "primary_macro": exact een van: Protein, Carbs, Fat, Balanced, None
- "is_healthy": true of false
- "promo_price": de effectieve prijs per stuk na korting als original_price bekend is, anders null
- "is_meerdere_artikels": true als de korting meerdere stuks vereist (zoals "1+1 GRATIS" of "2de aan halve prijs"), anders false
- "deal_quantity": het aantal stuks dat je moet kopen voor de korting, 1 voor een gewone korting
Antwoord UITSLUITEND met een JSON-array, even lang als de invoer, in dezelfde volgorde.`

type generatePayload struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"response_mime_type,omitempty"`
	Temperature      float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type promptItem struct {
	Name          string   `json:"name"`
	Discount      string   `json:"discount"`
	OriginalPrice *float64 `json:"original_price"`
}

type oracleResult struct {
	CleanName          *string  `json:"clean_name"`
	Category           string   `json:"category"`
	PrimaryMacro       string   `json:"primary_macro"`
	IsHealthy          bool     `json:"is_healthy"`
	PromoPrice         *float64 `json:"promo_price"`
	IsMeerdereArtikels *bool    `json:"is_meerdere_artikels"`
	DealQuantity       *int     `json:"deal_quantity"`
}

// EnrichBatch sends one batch of scraped promotions to the model and parses
// its JSON answer. Every shape violation is an error so the caller's retry
// and degrade logic can take over.
func (r *GeminiRepository) EnrichBatch(ctx context.Context, items []domain.EnrichmentInput) ([]domain.EnrichmentResult, error) {
	prompt, err := buildPrompt(items)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", r.config.BaseURL, r.config.Model)

	payload := generatePayload{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			Temperature:      0,
		},
	}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(payloadByte)))
	if err != nil {
		return nil, err
	}
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("x-goog-api-key", r.config.ApiKey)

	res, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("gemini returned status %v: %s", res.StatusCode, string(bodyBytes))
	}

	var body generateResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}

	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini response contains no candidates")
	}

	return parseResults(body.Candidates[0].Content.Parts[0].Text)
}

func buildPrompt(items []domain.EnrichmentInput) (string, error) {
	promptItems := make([]promptItem, len(items))
	for i, item := range items {
		promptItems[i] = promptItem{
			Name:          item.Name,
			Discount:      item.Discount,
			OriginalPrice: item.OriginalPrice,
		}
	}

	itemsJSON, err := json.Marshal(promptItems)
	if err != nil {
		return "", fmt.Errorf("failed to marshal prompt items: %w", err)
	}

	return systemPrompt + "\n\nProducten:\n" + string(itemsJSON), nil
}

// parseResults decodes the model's answer text as a JSON array, tolerating a
// markdown code fence around it.
func parseResults(text string) ([]domain.EnrichmentResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw []oracleResult
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse gemini answer as JSON array: %w", err)
	}

	results := make([]domain.EnrichmentResult, len(raw))
	for i, r := range raw {
		results[i] = domain.EnrichmentResult{
			CleanName:          r.CleanName,
			Category:           r.Category,
			PrimaryMacro:       r.PrimaryMacro,
			IsHealthy:          r.IsHealthy,
			PromoPrice:         r.PromoPrice,
			IsMeerdereArtikels: r.IsMeerdereArtikels,
			DealQuantity:       r.DealQuantity,
		}
	}

	return results, nil
}
