package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"kapebot/internal/domain"
)

// ChatCompleter is the slice of the OpenAI client the assistant needs.
// *openai.Client satisfies it; tests substitute a mock.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

const extractSystemPrompt = `Eres Kape, el extractor de criterios de APE.

TU TRABAJO: Analizar el mensaje del usuario y extraer datos estructurados.

REGLAS IMPORTANTES:
- Responde SOLO con un objeto JSON válido
- NO agregues texto explicativo antes o después del JSON
- Para texto libre, extraer: QUE (tipoPropiedad), DONDE (barrio/ciudad), CUANTO (precioMax)

FORMATO DE RESPUESTA:
{
  "tipo": "venta" | "alquiler" | null,
  "tipoPropiedad": "casa" | "departamento" | "duplex" | "terreno" | "local" | "oficina" | null,
  "dormitorios": number | null,
  "precioMax": number | null,
  "barrio": string | null,
  "ciudad": string | null
}`

const replySystemPrompt = `Eres Kape, el asistente inteligente de APE.

TU PERSONALIDAD:
- Amigable, directo y servicial. Un "kape" de verdad.
- Usas español natural: "depto", "vivienda", "zona", "cerca de".
- No eres robótico. Tienes calidez pero siempre profesional.

REGLAS:
- Firmas como "Kape" o "Tu Kape de APE".
- Nunca inventes propiedades.
- Respetas siempre a los agentes. Ellos son aliados, no competencia.`

// Assistant wraps the generative API for criteria extraction and reply
// generation. Every call degrades gracefully: extraction falls back to
// the local heuristic parser, replies to fixed strings.
type Assistant struct {
	client ChatCompleter
	model  string
	logger *zap.Logger
}

// NewAssistant creates an assistant. client may be nil, in which case
// only the local fallbacks are used.
func NewAssistant(client ChatCompleter, model string, logger *zap.Logger) *Assistant {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Assistant{client: client, model: model, logger: logger}
}

// Extract converts free text into search criteria. It never fails:
// any transport or parse error falls back to ParseCriteria, and total
// failure yields empty criteria. No session state is touched.
func (a *Assistant) Extract(ctx context.Context, text string) domain.Criteria {
	if a.client == nil {
		return ParseCriteria(text)
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: 0.1,
		MaxTokens:   200,
	})
	if err != nil {
		a.logger.Warn("criteria extraction call failed, using local parser", zap.Error(err))
		return ParseCriteria(text)
	}
	if len(resp.Choices) == 0 {
		return ParseCriteria(text)
	}

	criteria, err := decodeCriteria(resp.Choices[0].Message.Content)
	if err != nil {
		a.logger.Warn("criteria extraction reply unparseable, using local parser", zap.Error(err))
		return ParseCriteria(text)
	}
	return criteria
}

// Reply generates the conversational line accompanying free-text
// search results. Fixed fallbacks mirror the generated tone.
func (a *Assistant) Reply(ctx context.Context, userText string, results []domain.Property) string {
	fallback := func() string {
		if len(results) == 0 {
			return "Lo siento, no encontré propiedades con esos criterios. ¿Puedo ayudarte con otra búsqueda?"
		}
		return fmt.Sprintf("¡Perfecto! Encontré %d propiedades que coinciden. Te muestro las mejores opciones:", len(results))
	}

	if a.client == nil {
		return fallback()
	}

	var summary strings.Builder
	fmt.Fprintf(&summary, "Usuario: %q\n\nEncontré %d propiedades.", userText, len(results))
	if len(results) > 0 {
		summary.WriteString(" Primeras:")
		for i, p := range results {
			if i >= 2 {
				break
			}
			fmt.Fprintf(&summary, " %s - USD %.0f,", p.Title, p.PriceUSD)
		}
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: replySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: summary.String()},
		},
		Temperature: 0.7,
		MaxTokens:   200,
	})
	if err != nil || len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		if err != nil {
			a.logger.Warn("reply generation failed, using fixed reply", zap.Error(err))
		}
		return fallback()
	}
	return resp.Choices[0].Message.Content
}

// criteriaWire is the JSON shape the extraction prompt asks for
type criteriaWire struct {
	Tipo          string   `json:"tipo"`
	TipoPropiedad string   `json:"tipoPropiedad"`
	Dormitorios   *int     `json:"dormitorios"`
	PrecioMax     *float64 `json:"precioMax"`
	Barrio        string   `json:"barrio"`
	Ciudad        string   `json:"ciudad"`
}

// decodeCriteria pulls the first balanced JSON object out of a model
// reply (which may include preamble) and validates its fields.
func decodeCriteria(raw string) (domain.Criteria, error) {
	obj := firstJSONObject(raw)
	if obj == "" {
		return domain.Criteria{}, fmt.Errorf("no JSON object in reply")
	}

	var w criteriaWire
	if err := json.Unmarshal([]byte(obj), &w); err != nil {
		return domain.Criteria{}, fmt.Errorf("decode criteria: %w", err)
	}

	var c domain.Criteria
	switch domain.Operation(w.Tipo) {
	case domain.OperationRent, domain.OperationSale:
		c.Operation = domain.Operation(w.Tipo)
	}
	switch domain.PropertyKind(w.TipoPropiedad) {
	case domain.KindHouse, domain.KindApartment, domain.KindDuplex,
		domain.KindLand, domain.KindRetail, domain.KindOffice:
		c.PropertyKind = domain.PropertyKind(w.TipoPropiedad)
	}
	if w.Dormitorios != nil && *w.Dormitorios > 0 {
		c.MinBedrooms = w.Dormitorios
	}
	if w.PrecioMax != nil && *w.PrecioMax > 0 {
		c.MaxPriceUSD = w.PrecioMax
	}
	c.Neighborhood = strings.TrimSpace(w.Barrio)
	c.City = strings.TrimSpace(w.Ciudad)
	return c, nil
}

// firstJSONObject returns the first balanced {...} substring, or ""
func firstJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}

var (
	bedroomsPattern = regexp.MustCompile(`(\d+)\s*(?:dorm|habitacion)`)
	pricePattern    = regexp.MustCompile(`(?:hasta|maximo|máximo)?\s*(?:usd\s*)?(\d+)`)
)

// kindKeywords is checked in order; the first match wins
var kindKeywords = []struct {
	keys []string
	kind domain.PropertyKind
}{
	{[]string{"casa"}, domain.KindHouse},
	{[]string{"departamento", "depto"}, domain.KindApartment},
	{[]string{"duplex", "dúplex"}, domain.KindDuplex},
	{[]string{"terreno", "lote"}, domain.KindLand},
	{[]string{"local"}, domain.KindRetail},
	{[]string{"oficina"}, domain.KindOffice},
}

// knownNeighborhoods is the fallback gazetteer; first match wins
var knownNeighborhoods = []string{
	"villa morra", "centro", "recoleta", "las carmelitas",
	"luque", "lambaré", "san bernardino",
}

// ParseCriteria is the deterministic local extractor used when the
// generative call is unavailable or unparseable. It never fails; on a
// message with nothing recognizable it returns empty criteria.
func ParseCriteria(text string) domain.Criteria {
	lower := strings.ToLower(text)
	var c domain.Criteria

	if strings.Contains(lower, "alquil") || strings.Contains(lower, "renta") {
		c.Operation = domain.OperationRent
	} else if strings.Contains(lower, "compr") || strings.Contains(lower, "venta") {
		c.Operation = domain.OperationSale
	}

	c.PropertyKind = MapPropertyKind(lower)

	if m := bedroomsPattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			c.MinBedrooms = &n
		}
	}

	if m := pricePattern.FindStringSubmatch(lower); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			c.MaxPriceUSD = &n
		}
	}

	for _, hood := range knownNeighborhoods {
		if strings.Contains(lower, hood) {
			c.Neighborhood = titleCase(hood)
			break
		}
	}

	return c
}

// MapPropertyKind maps free text through the synonym table to a
// canonical kind, or "" when nothing matches.
func MapPropertyKind(text string) domain.PropertyKind {
	lower := strings.ToLower(text)
	for _, group := range kindKeywords {
		for _, key := range group.keys {
			if strings.Contains(lower, key) {
				return group.kind
			}
		}
	}
	return ""
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
