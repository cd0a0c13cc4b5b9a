package engine

import (
	"fmt"
	"math"
	"strings"

	"kapebot/internal/domain"
	"kapebot/internal/service"
)

// maxResults is how many listings a single reply shows
const maxResults = 3

const msgMenu = "Hola, soy Kape. ¿Con que te ayudo?\n\n" +
	"1. Buscar propiedad para alquilar\n" +
	"2. Buscar propiedad para comprar\n" +
	"3. Vender mi propiedad\n" +
	"4. Hablar con un agente\n\n" +
	"Responde con el numero o escribime tu busqueda directamente.\n\n" +
	"💡 Tip: Escribime \"Menú\" en cualquier momento para volver al inicio."

const msgMenuAfterReset = "¡Volvamos al inicio! 🔄\n\n¿Con qué te ayudo?\n\n" +
	"1. Buscar propiedad para alquilar\n" +
	"2. Buscar propiedad para comprar\n" +
	"3. Vender mi propiedad\n" +
	"4. Hablar con un agente\n\n" +
	"Responde con el número o escribime tu búsqueda directamente."

const msgAskZoneRent = "¡Perfecto! Buscas para alquilar 🏠\n\n" +
	"Primero, ¿tenés una zona o barrio específico en mente?\n\n" +
	"Podés decirme:\n" +
	"• Un barrio (ej: Villa Morra, Centro, Luque)\n" +
	"• Un punto de referencia (ej: cerca del Colegio Lumen)\n" +
	"• O escribime \"cualquiera\" si no tenés preferencia"

const msgAskZoneBuy = "¡Excelente! Buscas para comprar 🏡\n\n" +
	"Primero, ¿tenés una zona o barrio específico en mente?\n\n" +
	"Podés decirme:\n" +
	"• Un barrio (ej: Villa Morra, Centro, Luque)\n" +
	"• Un punto de referencia (ej: cerca del Colegio Lumen)\n" +
	"• O escribime \"cualquiera\" si no tenés preferencia"

const msgAskSellDetails = "¡Genial! Querés vender tu propiedad 📍\n\n" +
	"Para ayudarte mejor, contame:\n" +
	"• ¿Qué tipo de propiedad es?\n" +
	"• ¿En qué zona/barrio está?\n" +
	"• ¿Cuántos dormitorios tiene?\n" +
	"• ¿Precio aproximado?\n\n" +
	"Te conectaré con un agente verificado.\n\n" +
	"(Escribime \"Menú\" para volver)"

const msgAskContactTopic = "¡Claro! Te conecto con un agente de APE 🤝\n\n" +
	"¿Sobre qué necesitás hablar?\n" +
	"• Ver una propiedad específica\n" +
	"• Asesoramiento personalizado\n" +
	"• Vender/alquilar mi propiedad\n" +
	"• Otra consulta\n\n" +
	"Contame brevemente y te paso el contacto.\n\n" +
	"(Escribime \"Menú\" para volver)"

const msgSellHandoff = "¡Gracias por los datos! ✅\n\n" +
	"Un agente verificado de APE va a revisar tu propiedad y te contacta en breve.\n\n" +
	"💡 Escribime \"Menú\" si necesitás otra cosa."

const msgContactHandoff = "¡Anotado! ✅\n\n" +
	"Le paso tu consulta a un agente de APE y te escriben en breve.\n\n" +
	"💡 Escribime \"Menú\" si necesitás otra cosa."

const msgAskKind = "¿Tenés preferencia por algún tipo de propiedad?\n\n" +
	"• Casa\n" +
	"• Departamento\n" +
	"• Dúplex\n" +
	"• Local/Oficina\n" +
	"• Terreno\n" +
	"• O escribime \"cualquiera\""

const msgSearching = "🔍 Buscando propiedades con tus criterios..."

const msgSearchingFreeText = "🔍 Buscando propiedades para ti..."

const msgDirectSearchAck = "🔍 Vi que escribiste una búsqueda específica. Dejame procesarla..."

const msgNoResults = "No encontré propiedades con esos criterios exactos 😕\n\n" +
	"¿Querés que busque con filtros más amplios? Escribime:\n" +
	"• \"Más zona\" para ver otras zonas\n" +
	"• \"Más precio\" para ver otros rangos\n" +
	"• \"Cualquiera\" para ver todas las opciones\n" +
	"• \"Menú\" para empezar de nuevo"

const msgGenericError = "Lo siento, hubo un error procesando tu mensaje. " +
	"Por favor intenta de nuevo o escribime \"Menú\" para volver al inicio."

const resultsFooter = "¿Te interesa alguna? Responde con el número para más detalles.\n\n" +
	"💡 Escribime \"Menú\" para nueva búsqueda."

// askBudgetMessage acknowledges the zone answer and asks for a budget
func askBudgetMessage(zone string, hasZone bool) string {
	label := "Zona"
	if hasZone {
		label = "Zona " + zone
	}
	return fmt.Sprintf("¡%s anotada! ✓\n\n", label) +
		"¿Tenés un presupuesto aproximado?\n\n" +
		"Escribime:\n" +
		"• El monto (ej: 800, 5 millones, 3.500.000 gs)\n" +
		"• \"No tengo presupuesto\" para ver todas las opciones"
}

// budgetNotedMessage acknowledges the budget and asks for the property kind
func budgetNotedMessage(s *domain.Session) string {
	display := "USD " + formatThousands(s.BudgetStated)
	if s.Currency == domain.CurrencyGS && s.BudgetLocal > 0 {
		display = "Gs. " + formatThousands(s.BudgetLocal)
	}
	return fmt.Sprintf(
		"¡Presupuesto aproximado %s anotado! ✓ (Busco opciones hasta 30%% más por si te interesa)\n\n%s",
		display, msgAskKind,
	)
}

// noBudgetMessage confirms searching without a price cap
func noBudgetMessage() string {
	return "¡Dale! Veo opciones de todos los precios ✓\n\n" + msgAskKind
}

// noResultsDirectMessage is the empty-result reply for a one-shot search
func noResultsDirectMessage(op domain.Operation) string {
	return fmt.Sprintf("No encontré propiedades para %s exactas a tu búsqueda 😕\n\n", operationLabel(op)) +
		"¿Querés que te muestre opciones similares? Escribime:\n" +
		"• \"Más opciones\" para ver otras zonas\n" +
		"• \"Menú\" para empezar de nuevo"
}

// resultsMessage renders the guided-flow result list
func resultsMessage(results []domain.Property, currency domain.Currency) string {
	var b strings.Builder
	b.WriteString(resultsHeader(len(results), "¡Encontré %s para vos! 🎉"))
	b.WriteString("\n\n")
	writeListings(&b, results, currency)
	b.WriteString(resultsFooter)
	return b.String()
}

// directResultsMessage renders the one-shot search result list
func directResultsMessage(results []domain.Property, currency domain.Currency, op domain.Operation, zone string) string {
	if zone == "" {
		zone = "tu zona"
	}
	var b strings.Builder
	format := fmt.Sprintf("¡Encontré %%s para %s cerca de %s! 🎉", operationLabel(op), zone)
	b.WriteString(resultsHeader(len(results), format))
	b.WriteString("\n\n")
	writeListings(&b, results, currency)
	b.WriteString(resultsFooter)
	return b.String()
}

// freeTextResultsMessage appends the listing block to a generated reply
func freeTextResultsMessage(reply string, results []domain.Property) string {
	var b strings.Builder
	b.WriteString(reply)
	if len(results) == 0 {
		b.WriteString("\n\n💡 Escribime \"Menú\" para empezar de nuevo o intentá con otros criterios.")
		return b.String()
	}
	b.WriteString("\n\n")
	writeListings(&b, results, domain.CurrencyUSD)
	b.WriteString(resultsFooter)
	return b.String()
}

func resultsHeader(count int, format string) string {
	noun := fmt.Sprintf("%d propiedades", count)
	if count == 1 {
		noun = "1 propiedad"
	}
	return fmt.Sprintf(format, noun)
}

func operationLabel(op domain.Operation) string {
	if op == domain.OperationSale {
		return "compra"
	}
	return "alquiler"
}

// writeListings renders up to maxResults entries: title, price in the
// session currency, location, and size lines.
func writeListings(b *strings.Builder, results []domain.Property, currency domain.Currency) {
	for i, p := range results {
		if i >= maxResults {
			break
		}
		fmt.Fprintf(b, "%d. %s\n", i+1, p.Title)

		suffix := ""
		if p.Operation == domain.OperationRent {
			suffix = "/mes"
		}
		if currency == domain.CurrencyGS {
			gs := p.PriceUSD * service.GuaraniesPerDollar
			fmt.Fprintf(b, "   💰 Gs. %s%s\n", formatThousands(gs), suffix)
		} else {
			fmt.Fprintf(b, "   💰 USD %s%s\n", formatThousands(p.PriceUSD), suffix)
		}

		fmt.Fprintf(b, "   📍 %s, %s\n", p.Neighborhood, p.City)
		fmt.Fprintf(b, "   🏠 %d dorm, %dm²\n\n", p.Bedrooms, p.AreaM2)
	}
}

// formatThousands renders a whole amount with "." grouping (es-PY style)
func formatThousands(v float64) string {
	n := int64(math.Round(v))
	neg := n < 0
	if neg {
		n = -n
	}
	s := fmt.Sprintf("%d", n)
	if len(s) > 3 {
		var parts []string
		for len(s) > 3 {
			parts = append([]string{s[len(s)-3:]}, parts...)
			s = s[:len(s)-3]
		}
		s = s + "." + strings.Join(parts, ".")
	}
	if neg {
		s = "-" + s
	}
	return s
}
