package query

// Category is a filterable chart category code.
type Category string

// Category codes accepted by cat=.
const (
	CategoryAnime    Category = "anime"
	CategoryMaimai   Category = "maimai"
	CategoryNiconico Category = "niconico"
	CategoryTouhou   Category = "touhou"
	CategoryGame     Category = "game"
	CategoryOngeki   Category = "ongeki"
)

//nolint:gochecknoglobals // fixed vocabulary
var (
	// genreCategories maps both the Chinese and the Japanese genre names the
	// catalog carries onto a category code.
	genreCategories = map[string]Category{
		"流行&动漫":            CategoryAnime,
		"POPSアニメ":          CategoryAnime,
		"舞萌":               CategoryMaimai,
		"maimai":           CategoryMaimai,
		"niconico & VOCALOID": CategoryNiconico,
		"niconicoボーカロイド":    CategoryNiconico,
		"东方Project":        CategoryTouhou,
		"東方Project":        CategoryTouhou,
		"其他游戏":             CategoryGame,
		"ゲームバラエティ":         CategoryGame,
		"音击&中二节奏":          CategoryOngeki,
		"オンゲキCHUNITHM":     CategoryOngeki,
	}

	knownCategories = map[Category]struct{}{
		CategoryAnime:    {},
		CategoryMaimai:   {},
		CategoryNiconico: {},
		CategoryTouhou:   {},
		CategoryGame:     {},
		CategoryOngeki:   {},
	}
)

// CategoryOf returns the category code of a catalog genre.
func CategoryOf(genre string) (Category, bool) {
	c, ok := genreCategories[genre]
	return c, ok
}

// ParseCategory validates a category code.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	_, ok := knownCategories[c]
	return c, ok
}
