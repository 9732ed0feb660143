package core

// Currency is a display currency; the engine itself is currency-agnostic and
// never converts amounts.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// Settings travels alongside the ledger state in storage but is pure
// presentation configuration; the engine passes it through unchanged.
type Settings struct {
	Currency      Currency `json:"currency"`
	DarkMode      bool     `json:"darkMode"`
	BalanceHidden bool     `json:"balanceHidden"`
}

// Currencies lists the supported display currencies. The first entry is the
// default.
var Currencies = []Currency{
	{Code: "SAR", Symbol: "ر.س", Name: "ريال سعودي"},
	{Code: "EGP", Symbol: "ج.م", Name: "جنيه مصري"},
	{Code: "AED", Symbol: "د.إ", Name: "درهم إماراتي"},
	{Code: "KWD", Symbol: "د.ك", Name: "دينار كويتي"},
	{Code: "USD", Symbol: "$", Name: "دولار أمريكي"},
	{Code: "QAR", Symbol: "ر.ق", Name: "ريال قطري"},
	{Code: "OMR", Symbol: "ر.ع.", Name: "ريال عماني"},
	{Code: "JOD", Symbol: "د.ا", Name: "دينار أردني"},
	{Code: "EUR", Symbol: "€", Name: "يورو"},
}

// CurrencyByCode looks up a supported currency by ISO code.
func CurrencyByCode(code string) (Currency, bool) {
	for _, c := range Currencies {
		if c.Code == code {
			return c, true
		}
	}
	return Currency{}, false
}

var categories = map[RecordKind][]string{
	KindExpense:    {"طعام", "مواصلات", "رعاية شخصية", "إلكترونيات", "صحة", "ترفيه", "تسوق", "تعليم", "صيانة", "أخرى"},
	KindReceivable: {"دين", "بيع بالآجل", "أخرى"},
	KindPayable:    {"إيجار", "كهرباء", "ماء", "إنترنت", "قرض", "دين شخصي", "قسط/فاتورة", "أخرى"},
}

// CategoriesFor returns the allowed category labels for a record kind. The
// engine does not enforce membership; the presentation layer validates
// against this set before submitting.
func CategoriesFor(kind RecordKind) []string {
	cats, ok := categories[kind]
	if !ok {
		return nil
	}
	out := make([]string, len(cats))
	copy(out, cats)
	return out
}

// DefaultSettings returns the settings a fresh ledger starts with.
func DefaultSettings() Settings {
	return Settings{Currency: Currencies[0]}
}
