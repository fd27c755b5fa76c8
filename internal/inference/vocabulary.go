package inference

import (
	"maps"
	"slices"

	"ChannelSync/internal/domain"
)

// Bucket is one category with the keywords that select it.
type Bucket struct {
	Category domain.Category
	Keywords []string
}

// Vocabulary holds the keyword tables used for inference. Buckets are tried
// in order and the first bucket with a hit wins.
type Vocabulary struct {
	Buckets         []Bucket
	Fallback        domain.Category
	Countries       map[string]string
	Organizations   map[string]string
	SectionHeadings []string
}

func (v Vocabulary) clone() Vocabulary {
	out := Vocabulary{
		Fallback:        v.Fallback,
		Countries:       maps.Clone(v.Countries),
		Organizations:   maps.Clone(v.Organizations),
		SectionHeadings: slices.Clone(v.SectionHeadings),
	}
	for _, b := range v.Buckets {
		out.Buckets = append(out.Buckets, Bucket{Category: b.Category, Keywords: slices.Clone(b.Keywords)})
	}
	return out
}

// DefaultVocabulary returns the built-in English and Arabic tables.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		Buckets: []Bucket{
			{
				Category: domain.CategoryBreaking,
				Keywords: []string{"breaking", "urgent", "عاجل", "خبر عاجل", "طارئ"},
			},
			{
				Category: domain.CategoryMilitary,
				Keywords: []string{
					"military", "weapon", "army", "forces", "troops", "battlefield", "missile",
					"drone", "strike", "attack", "defense", "war", "combat", "artillery",
					"عسكري", "جيش", "قوات", "صاروخ", "طائرة مسيرة", "ضربة", "هجوم", "دفاع",
					"حرب", "معركة", "سلاح", "انسحاب",
				},
			},
			{
				Category: domain.CategoryIntelligence,
				Keywords: []string{
					"intelligence", "leaked", "exposed", "covert", "secret", "spy", "agent",
					"استخبارات", "تسريب", "كشف", "سري", "جاسوس", "عميل",
				},
			},
			{
				Category: domain.CategoryEconomic,
				Keywords: []string{
					"economic", "economy", "sanction", "dollar", "trade", "oil", "gas",
					"market", "financial", "bank", "currency",
					"اقتصاد", "اقتصادي", "عقوبات", "دولار", "تجارة", "نفط", "غاز", "سوق", "بنك",
				},
			},
			{
				Category: domain.CategoryPolitical,
				Keywords: []string{
					"saudi", "emirati", "yemen", "gaza", "israel", "iran", "coalition",
					"government", "president", "minister", "parliament", "election", "vote",
					"سعودي", "إماراتي", "يمن", "غزة", "إسرائيل", "إيران", "تحالف",
					"حكومة", "رئيس", "وزير", "برلمان", "انتخاب", "سياسي", "سياسة",
				},
			},
			{
				Category: domain.CategoryDiplomatic,
				Keywords: []string{
					"diplomatic", "diplomacy", "negotiation", "summit", "treaty", "agreement",
					"ambassador", "embassy", "talks",
					"دبلوماسي", "دبلوماسية", "مفاوضات", "قمة", "معاهدة", "اتفاق", "سفير", "سفارة",
				},
			},
		},
		Fallback: domain.CategoryAnalysis,
		Countries: map[string]string{
			"israel": "Israel", "israeli": "Israel", "اسرائيل": "Israel", "إسرائيل": "Israel",
			"palestine": "Palestine", "palestinian": "Palestine", "gaza": "Palestine", "فلسطين": "Palestine", "غزة": "Palestine",
			"yemen": "Yemen", "yemeni": "Yemen", "اليمن": "Yemen", "يمن": "Yemen",
			"iran": "Iran", "iranian": "Iran", "إيران": "Iran", "ايران": "Iran",
			"saudi": "Saudi Arabia", "saudi arabia": "Saudi Arabia", "السعودية": "Saudi Arabia",
			"uae": "UAE", "emirati": "UAE", "emirates": "UAE", "الإمارات": "UAE",
			"egypt": "Egypt", "egyptian": "Egypt", "مصر": "Egypt",
			"syria": "Syria", "syrian": "Syria", "سوريا": "Syria",
			"lebanon": "Lebanon", "lebanese": "Lebanon", "لبنان": "Lebanon",
			"iraq": "Iraq", "iraqi": "Iraq", "العراق": "Iraq",
			"jordan": "Jordan", "jordanian": "Jordan", "الأردن": "Jordan",
			"turkey": "Turkey", "turkish": "Turkey", "تركيا": "Turkey",
			"russia": "Russia", "russian": "Russia", "روسيا": "Russia",
			"usa": "USA", "america": "USA", "american": "USA", "أمريكا": "USA",
			"china": "China", "chinese": "China", "الصين": "China",
		},
		Organizations: map[string]string{
			"idf": "IDF", "israel defense": "IDF", "جيش الدفاع": "IDF",
			"hamas": "Hamas", "حماس": "Hamas",
			"hezbollah": "Hezbollah", "حزب الله": "Hezbollah",
			"houthi": "Houthis", "ansar allah": "Houthis", "الحوثي": "Houthis", "أنصار الله": "Houthis",
			"irgc": "IRGC", "revolutionary guard": "IRGC", "الحرس الثوري": "IRGC",
			"mossad": "Mossad", "الموساد": "Mossad", "cia": "CIA",
			"un ": "UN", "united nations": "UN", "الأمم المتحدة": "UN",
			"nato": "NATO", "الناتو": "NATO",
			"plo": "PLO", "منظمة التحرير": "PLO",
			"fatah": "Fatah", "فتح": "Fatah",
			"islamic jihad": "Islamic Jihad", "الجهاد الإسلامي": "Islamic Jihad",
		},
		SectionHeadings: []string{"conclusion", "introduction", "الخاتمة", "خاتمة", "مقدمة"},
	}
}
