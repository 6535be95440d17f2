package garex

// Bank display names to provider bank codes, per country partition.
var (
	banksRUS = map[string]string{
		"Сбер":                              "sber",
		"Т-банк":                            "t-bank",
		"Альфа-банк":                        "alfa-bank",
		"Юнистрим":                          "unistream",
		"Ренессанс":                         "renessans",
		"Яндекс банк":                       "yandex-bank",
		"ОТП Банк":                          "otp-bank",
		"Ингосстрах Банк":                   "ingosstrah",
		"Московский кредитный банк":         "mkb",
		"Банк Приморье":                     "primore",
		"АК Барс Банк":                      "ak-bars",
		"Уралсиб":                           "uralsib",
		"Азиатско-Тихоокеанский Банк (АТБ)": "atb",
		"ВТБ":                               "vtb",
		"Газпромбанк":                       "gazprombank",
		"Совкомбанк":                        "sovcombank",
		"Промсвязьбанк (ПСБ)":               "psbank",
		"МТС-деньги (Экси-банк)":            "mtsdengi",
		"Почта Банк":                        "pochtabank",
		"Ozon Банк":                         "ozonbank",
		"Банк Пойдём":                       "poidem",
		"Банк Левобережный":                 "nskbl",
		"Вайлдберриз Банк":                  "wb-bank",
		"Райффайзен Банк":                   "raiffeisen",
		"БКС Банк":                          "bks-bank",
		"МТС Банк":                          "mts-bank",
		"ЭЛПЛАТ":                            "el-plat",
		"Россельхозбанк":                    "rshb",
		"АБ РОССИЯ":                         "abr",
		"КБ СОЛИДАРНОСТЬ":                   "solid",
		"КБ ДОЛИНСК":                        "dolinskbank",
		"Центр-инвест":                      "centrinvest",
		"ЧЕЛЯБИНВЕСТБАНК":                   "chelinvest",
		"Банк Русский Стандарт":             "rsb",
		"Банк ЗЕНИТ":                        "zenit",
		"KWIKPAY":                           "kwikpay",
		"СДМ-Банк":                          "sdm-bank",
		"Открытие":                          "open",
		"Банк Авангард":                     "avangard",
		"РНКБ":                              "rncb",
		"Росбанк":                           "rosbank",
		"Хоумбанк":                          "homebank",
		"Примсоцбанк":                       "pskb",
		"Банк Хлынов":                       "bank-hlynov",
		"Банк Кузнецкий":                    "kuzbank",
		"ББР Банк":                          "bbr",
		"Транскапитал":                      "tkbbank",
		"Рокетбанк":                         "rocketbank",
		"Кошелек ЦУПИС":                     "cupis",
		"ЮMoney":                            "yoomoney",
		"Фора-банк":                         "forabank",
		"ДОМ.РФ":                            "domrfbank",
		"Банк Эсхата":                       "eskhata",
		"Международный банк Таджикистана":   "ibt",
		"Банк Арванд":                       "arvand",
		"Ориёнбонк":                         "oriyonbonk",
		"Тавхидбанк":                        "tawhidbank",
		"Душанбе Сити":                      "dc_tj",
		"Qplus (Евроальянс банк)":           "qplus",
	}

	banksABH = map[string]string{
		"Амра-банк (Абхазия)": "amra-bank",
		"А-Мобаил (Абхазия)":  "a-mobile",
	}

	banksTJS = map[string]string{
		"Амонатбанк (Таджикистан)":        "amonatbank",
		"Алиф Банк (Таджикистан)":         "alif-bank",
		"Душанбе Сити":                    "dc_tj",
		"Тавхидбанк":                      "tawhidbank",
		"Ориёнбонк":                       "oriyonbonk",
		"Банк Арванд":                     "arvand",
		"Международный банк Таджикистана": "ibt",
		"Банк Эсхата":                     "eskhata",
	}

	banksAZN = map[string]string{
		"Kapital Bank": "kapitalbank-az",
		"Premium bank": "premiumbank-az",
		"Unibank":      "unibank-az",
		"m10":          "m10",
	}

	simOperatorsRUS = map[string]string{
		"МТС":     "mts",
		"Билайн":  "beeline",
		"МегаФон": "megafon",
		"Tele2":   "t2",
	}
)

// bankLookupOrder is the priority used to resolve a merchant bank name.
var bankLookupOrder = []map[string]string{banksRUS, banksAZN, banksABH, banksTJS}

const (
	countryRUS = "РФ"
	countryAZN = "Азербайджан"
	countryABH = "Абхазия"
	countryTJS = "Таджикистан"
)

// BankCode resolves a merchant-visible bank name to the provider bank code.
func BankCode(bankName string) (string, bool) {
	for _, catalog := range bankLookupOrder {
		if code, ok := catalog[bankName]; ok {
			return code, true
		}
	}
	return "", false
}

// CountryName derives the requisite's country from the bank value the
// provider returns. The value is matched against catalog display names and
// anything unmatched falls into the Tajikistan bucket.
func CountryName(bank string) string {
	switch {
	case inCatalog(banksRUS, bank):
		return countryRUS
	case inCatalog(banksAZN, bank):
		return countryAZN
	case inCatalog(banksABH, bank):
		return countryABH
	default:
		return countryTJS
	}
}

// OperatorName turns a provider operator code into its display name. Values
// that are not operator codes are returned unchanged.
func OperatorName(value string) string {
	for name, code := range simOperatorsRUS {
		if code == value {
			return name
		}
	}
	return value
}

func inCatalog(catalog map[string]string, name string) bool {
	_, ok := catalog[name]
	return ok
}
