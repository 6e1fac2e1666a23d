package categorizer

// Category pairs a label with the keywords that vote for it. Catalog order is
// the tie-break when two categories score equally, so the slices below are
// ordered by how specific the category is.
type Category struct {
	Name     string
	Keywords []string
}

// Catalog holds the per-language keyword tables. It is loaded once at startup
// and treated as read-only afterwards; Categorize never mutates it.
type Catalog struct {
	English []Category
	Russian []Category
}

// DefaultCatalog returns the built-in category-keyword tables.
func DefaultCatalog() *Catalog {
	return &Catalog{
		English: []Category{
			{Name: "programming", Keywords: []string{
				"programming", "coding", "software development", "python",
				"javascript", "golang", "backend", "frontend", "code",
			}},
			{Name: "technology", Keywords: []string{
				"technology", "computer", "software", "app", "website",
				"internet", "digital", "ai", "machine learning", "startup tech",
			}},
			{Name: "science", Keywords: []string{
				"research", "science", "scientist", "discovery", "experiment",
				"physics", "chemistry", "biology", "mathematics", "medicine",
			}},
			{Name: "business", Keywords: []string{
				"business", "company", "startup", "investment", "economy",
				"market", "finance", "money", "profit", "sales",
			}},
			{Name: "education", Keywords: []string{
				"education", "study", "university", "school", "course",
				"learning", "student", "teacher", "knowledge",
			}},
			{Name: "sports", Keywords: []string{
				"sport", "football", "hockey", "basketball", "olympics",
				"training", "team", "match", "competition",
			}},
			{Name: "entertainment", Keywords: []string{
				"movie", "film", "actor", "music", "game", "book",
				"theater", "concert", "show", "television",
			}},
		},
		Russian: []Category{
			{Name: "технологии", Keywords: []string{
				"технология", "компьютер", "программирование", "код",
				"разработка", "софтвер", "приложение", "сайт", "интернет",
				"цифровой",
			}},
			{Name: "наука", Keywords: []string{
				"исследование", "наука", "ученый", "открытие", "эксперимент",
				"физика", "химия", "биология", "математика", "медицина",
			}},
			{Name: "бизнес", Keywords: []string{
				"бизнес", "компания", "стартап", "инвестиции", "экономика",
				"рынок", "финансы", "деньги", "прибыль", "продажи",
			}},
			{Name: "образование", Keywords: []string{
				"образование", "учеба", "университет", "школа", "курс",
				"обучение", "студент", "преподаватель", "знания",
			}},
			{Name: "спорт", Keywords: []string{
				"спорт", "футбол", "хоккей", "баскетбол", "олимпиада",
				"тренировка", "команда", "матч", "соревнование",
			}},
			{Name: "развлечения", Keywords: []string{
				"кино", "фильм", "актер", "музыка", "игра", "книга",
				"театр", "концерт", "шоу", "телевидение",
			}},
		},
	}
}

// categoriesFor picks the keyword table by ISO 639-1 language code.
func (c *Catalog) categoriesFor(lang string) []Category {
	if lang == "ru" {
		return c.Russian
	}
	return c.English
}
