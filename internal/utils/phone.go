package utils

import "strings"

const countryPrefix = "880"

// NormalizePhone приводит телефон к локальному формату 0XXXXXXXXXX.
// Для некорректного ввода результат может быть короче 11 цифр.
func NormalizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()

	if strings.HasPrefix(digits, countryPrefix) {
		digits = "0" + digits[len(countryPrefix):]
	}
	if len(digits) == 10 && digits[0] != '0' {
		digits = "0" + digits
	}
	return digits
}

// IsValidPhone проверяет, что нормализованный номер похож на мобильный номер.
func IsValidPhone(normalized string) bool {
	return len(normalized) == 11 && strings.HasPrefix(normalized, "01")
}

// InternationalPhone возвращает номер в виде 880XXXXXXXXXX.
func InternationalPhone(normalized string) string {
	return countryPrefix + strings.TrimPrefix(normalized, "0")
}

// PhoneVariants перечисляет форматы, в которых номер мог быть сохранён раньше.
func PhoneVariants(raw, normalized string) []string {
	candidates := []string{
		normalized,
		"+" + InternationalPhone(normalized),
		InternationalPhone(normalized),
		strings.TrimPrefix(normalized, "0"),
		strings.TrimSpace(raw),
	}

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		variants = append(variants, c)
	}
	return variants
}

// PhoneSuffix последние 10 цифр номера, для поиска без учёта префикса.
func PhoneSuffix(normalized string) string {
	if len(normalized) <= 10 {
		return normalized
	}
	return normalized[len(normalized)-10:]
}
