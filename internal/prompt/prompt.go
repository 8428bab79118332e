// Package prompt builds the role and language specific instruction text that
// wraps a student question before it is sent to the language model.
package prompt

// Role selects the teaching persona for a turn.
type Role string

const (
	RoleGeneral     Role = "general"
	RoleMath        Role = "math"
	RoleScience     Role = "science"
	RoleProgramming Role = "programming"
	RoleLanguage    Role = "language"
)

// Language selects the response language and the synthesis voice.
type Language string

const (
	LanguageEnglish Language = "english"
	LanguageArabic  Language = "arabic"
)

// ParseRole maps arbitrary input onto a known role. Unknown input falls back
// to the general teacher rather than failing the turn.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleMath, RoleScience, RoleProgramming, RoleLanguage, RoleGeneral:
		return Role(s)
	default:
		return RoleGeneral
	}
}

// ParseLanguage maps arbitrary input onto a known language, defaulting to English.
func ParseLanguage(s string) Language {
	if Language(s) == LanguageArabic {
		return LanguageArabic
	}
	return LanguageEnglish
}

// Code returns the two-letter language code used by the fallback synthesizer.
func (l Language) Code() string {
	if l == LanguageArabic {
		return "ar"
	}
	return "en"
}

var englishContexts = map[Role]string{
	RoleMath:        "You are an expert mathematics teacher who explains concepts in a simple and clear way",
	RoleScience:     "You are a passionate science teacher who loves to simplify scientific information",
	RoleLanguage:    "You are a skilled language teacher who explains grammar and literature clearly",
	RoleProgramming: "You are an expert software developer who explains programming concepts clearly",
	RoleGeneral:     "You are a friendly and helpful multi-disciplinary teacher",
}

var arabicContexts = map[Role]string{
	RoleMath:        "أنت معلم رياضيات خبير تشرح المفاهيم بطريقة بسيطة ومفهومة",
	RoleScience:     "أنت معلم علوم شغوف تحب تبسيط المعلومات العلمية",
	RoleLanguage:    "أنت معلم لغة عربية متمكن تشرح القواعد والأدب بوضوح",
	RoleProgramming: "أنت مطور برمجيات خبير تشرح البرمجة بوضوح",
	RoleGeneral:     "أنت معلم متعدد التخصصات ودود ومساعد",
}

// Build assembles the full prompt: persona preamble, the literal question and a
// closing instruction in the response language.
func Build(question string, role Role, language Language) string {
	if language == LanguageArabic {
		ctx, ok := arabicContexts[role]
		if !ok {
			ctx = arabicContexts[RoleGeneral]
		}
		return ctx + "\n\nالطالب يسأل: " + question + "\n\nأجب باللغة العربية بشكل تعليمي وواضح:"
	}
	ctx, ok := englishContexts[role]
	if !ok {
		ctx = englishContexts[RoleGeneral]
	}
	return ctx + "\n\nStudent asks: " + question + "\n\nRespond in English in an educational and clear manner:"
}
