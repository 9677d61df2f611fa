// Package category resolves a product category for an item and supplies the
// per-category validation and variant-importance weight tables.
package category

import (
	"strings"

	"github.com/relist-ai/comps-cli/internal/model"
	"github.com/relist-ai/comps-cli/internal/textmatch"
)

// Category identifies one of the closed set of product categories the
// weight tables know about.
type Category string

const (
	General           Category = "general"
	Sneakers          Category = "sneakers"
	Watches           Category = "watches"
	TradingCards      Category = "trading_cards"
	LuxuryHandbags    Category = "luxury_handbags"
	DesignerClothing  Category = "designer_clothing"
	ElectronicsPhones Category = "electronics_phones"
	ElectronicsGaming Category = "electronics_gaming"
	VintageDenim      Category = "vintage_denim"
	AudioEquipment    Category = "audio_equipment"
)

// explicitNames maps normalized explicit category strings (and common
// synonyms identification emits) to canonical identifiers.
var explicitNames = map[string]Category{
	"general":            General,
	"sneakers":           Sneakers,
	"shoes":              Sneakers,
	"watches":            Watches,
	"watch":              Watches,
	"trading_cards":      TradingCards,
	"trading cards":      TradingCards,
	"cards":              TradingCards,
	"luxury_handbags":    LuxuryHandbags,
	"handbags":           LuxuryHandbags,
	"bags":               LuxuryHandbags,
	"designer_clothing":  DesignerClothing,
	"clothing":           DesignerClothing,
	"apparel":            DesignerClothing,
	"electronics_phones": ElectronicsPhones,
	"phones":             ElectronicsPhones,
	"smartphones":        ElectronicsPhones,
	"electronics_gaming": ElectronicsGaming,
	"gaming":             ElectronicsGaming,
	"video games":        ElectronicsGaming,
	"vintage_denim":      VintageDenim,
	"denim":              VintageDenim,
	"audio_equipment":    AudioEquipment,
	"audio":              AudioEquipment,
}

// keywords are scanned against identification category strings and comp
// titles when no explicit category resolves.
var keywords = map[Category][]string{
	Sneakers:          {"sneaker", "jordan", "yeezy", "dunk", "air max", "new balance", "trainers", "running shoe"},
	Watches:           {"watch", "chronograph", "submariner", "seamaster", "datejust", "wristwatch", "automatic movement"},
	TradingCards:      {"trading card", "pokemon card", "psa ", "bgs ", "cgc ", "rookie card", "holo", "tcg", "topps", "panini"},
	LuxuryHandbags:    {"handbag", "birkin", "kelly bag", "speedy", "neverfull", "tote", "crossbody", "clutch"},
	DesignerClothing:  {"jacket", "hoodie", "dress", "coat", "sweater", "t-shirt", "cardigan"},
	ElectronicsPhones: {"iphone", "galaxy s", "pixel", "smartphone", "unlocked phone"},
	ElectronicsGaming: {"playstation", "nintendo", "xbox", "gameboy", "game boy", "console", "switch oled", "ps5", "ps4"},
	VintageDenim:      {"levis", "levi's", "501", "selvedge", "denim jacket", "vintage jeans", "wrangler"},
	AudioEquipment:    {"turntable", "amplifier", "speakers", "headphones", "receiver", "reel to reel", "preamp", "hifi", "hi-fi"},
}

// keywordOrder fixes the scan order so resolution is deterministic when a
// title matches more than one category's keyword list.
var keywordOrder = []Category{
	Sneakers, Watches, TradingCards, LuxuryHandbags, DesignerClothing,
	ElectronicsPhones, ElectronicsGaming, VintageDenim, AudioEquipment,
}

// resolver tries one source of category signal; empty result means "try the
// next one".
type resolver func(item model.ItemContext, comps []model.Comp) Category

// resolvers in precedence order: explicit field, then identification
// category list, then comp-title keyword scan. First non-empty wins.
var resolvers = []resolver{
	resolveExplicit,
	resolveCategoryList,
	resolveTitles,
}

// Resolve determines the category for an item, falling back to General when
// no signal resolves.
func Resolve(item model.ItemContext, comps []model.Comp) Category {
	for _, r := range resolvers {
		if c := r(item, comps); c != "" {
			return c
		}
	}
	return General
}

func resolveExplicit(item model.ItemContext, _ []model.Comp) Category {
	if item.Category == "" {
		return ""
	}
	name := textmatch.Normalize(item.Category)
	if c, ok := explicitNames[name]; ok {
		return c
	}
	// An explicit but unrecognized category still gets a keyword pass
	// before the cascade moves on.
	return matchKeywords(name)
}

func resolveCategoryList(item model.ItemContext, _ []model.Comp) Category {
	for _, raw := range item.Categories {
		name := textmatch.Normalize(raw)
		if c, ok := explicitNames[name]; ok {
			return c
		}
		if c := matchKeywords(name); c != "" {
			return c
		}
	}
	return ""
}

// resolveTitles scans comp titles and picks the category with the most
// keyword hits across the set.
func resolveTitles(_ model.ItemContext, comps []model.Comp) Category {
	if len(comps) == 0 {
		return ""
	}

	hits := make(map[Category]int)
	for i := range comps {
		title := textmatch.Normalize(comps[i].Title)
		for _, c := range keywordOrder {
			for _, kw := range keywords[c] {
				if strings.Contains(title, kw) {
					hits[c]++
					break
				}
			}
		}
	}

	var best Category
	bestHits := 0
	for _, c := range keywordOrder {
		if hits[c] > bestHits {
			best, bestHits = c, hits[c]
		}
	}
	return best
}

func matchKeywords(normalized string) Category {
	for _, c := range keywordOrder {
		for _, kw := range keywords[c] {
			if strings.Contains(normalized, kw) {
				return c
			}
		}
	}
	return ""
}
