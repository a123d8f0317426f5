package planner

import (
	"fmt"
	"strings"

	"github.com/BaSui01/shopsim/persona"
)

const (
	baseInclusionProbability = 0.5
	genericSearchTerm        = "product"
)

// categorySearchTerms 把偏好品类映射为具体搜索关键词。
var categorySearchTerms = map[string][]string{
	"Electronics": {"smartphone", "laptop", "headphones", "camera"},
	"Fashion":     {"shoes", "dress", "jacket", "jeans"},
	"Home":        {"sofa", "lamp", "kitchen", "bedding"},
	"Books":       {"novel", "cookbook", "biography", "fiction"},
	"Sports":      {"sneakers", "fitness", "bike", "yoga"},
	"Beauty":      {"skincare", "makeup", "fragrance", "haircare"},
	"Food":        {"coffee", "chocolate", "snacks", "tea"},
}

// inclusionRule 调整某些任务的可选纳入概率。
type inclusionRule struct {
	applies func(taskID string, traits persona.Traits, frequency string) bool
	delta   float64
}

var inclusionRules = []inclusionRule{
	{
		// 高技术熟练度更可能用过滤器、读评论。
		applies: func(taskID string, traits persona.Traits, _ string) bool {
			return traits.TechProficiency > 7 && oneOf(taskID, "filter_products", "read_reviews")
		},
		delta: 0.3,
	},
	{
		// 低技术熟练度回避过滤器与规格对比。
		applies: func(taskID string, traits persona.Traits, _ string) bool {
			return traits.TechProficiency < 3 && oneOf(taskID, "filter_products", "check_specifications")
		},
		delta: -0.3,
	},
	{
		// 耐心高者愿意多逛。
		applies: func(taskID string, traits persona.Traits, _ string) bool {
			return traits.PatienceLevel > 7 && oneOf(taskID, "read_reviews", "check_shipping_cost", "browse_featured_products")
		},
		delta: 0.2,
	},
	{
		// 耐心低者整体少做可选任务。
		applies: func(_ string, traits persona.Traits, _ string) bool {
			return traits.PatienceLevel < 3
		},
		delta: -0.2,
	},
	{
		// 高频购物者更关心运费与筛选。
		applies: func(taskID string, _ persona.Traits, frequency string) bool {
			return (frequency == "Daily" || frequency == "Weekly") &&
				oneOf(taskID, "check_shipping_cost", "filter_search_results")
		},
		delta: 0.2,
	},
}

// decisionRule 是某个决策点的 id 专属规则，按声明顺序优先。
type decisionRule struct {
	decisionID string
	apply      func(profile persona.Profile, options []string) (option, rationale string, ok bool)
}

var decisionRules = []decisionRule{
	{
		decisionID: "category_selection",
		apply: func(profile persona.Profile, options []string) (string, string, bool) {
			preferred := profile.Strings("shopping_behavior.product_categories")
			if len(preferred) > 0 && contains(options, "preferred_categories") {
				return "preferred_categories",
					fmt.Sprintf("Based on persona's preferred product categories: %s", strings.Join(preferred, ", ")),
					true
			}
			return "", "", false
		},
	},
	{
		decisionID: "product_selection",
		apply: func(profile persona.Profile, options []string) (string, string, bool) {
			if profile.String("shopping_behavior.price_sensitivity", "Mid-range") == "Budget" &&
				contains(options, "lowest_price") {
				return "lowest_price", "Based on budget price sensitivity", true
			}
			if profile.String("shopping_behavior.brand_loyalty", "Price-driven") == "Brand loyal" &&
				contains(options, "specific_brand") {
				return "specific_brand", "Based on brand loyalty", true
			}
			if profile.Int("e_commerce_specific.importance_of_reviews", 5) > 7 &&
				contains(options, "best_rated") {
				return "best_rated", "Based on high importance of reviews", true
			}
			return "", "", false
		},
	},
	{
		decisionID: "payment_selection",
		apply: func(profile persona.Profile, options []string) (string, string, bool) {
			for _, method := range profile.Strings("technical.payment_methods") {
				normalized := strings.ReplaceAll(strings.ToLower(method), " ", "_")
				if contains(options, normalized) {
					return normalized, fmt.Sprintf("Based on preferred payment method: %s", method), true
				}
			}
			return "", "", false
		},
	},
	{
		decisionID: "search_method",
		apply: func(profile persona.Profile, options []string) (string, string, bool) {
			proficiency := profile.Int("technical.proficiency", persona.DefaultTechProficiency)
			if proficiency > 7 && contains(options, "search_bar") {
				return "search_bar", "Based on high tech proficiency", true
			}
			if proficiency < 3 && contains(options, "category_navigation") {
				return "category_navigation", "Based on low tech proficiency", true
			}
			return "", "", false
		},
	},
	{
		decisionID: "research_depth",
		apply: func(profile persona.Profile, options []string) (string, string, bool) {
			patience := profile.Int("e_commerce_specific.patience_level", persona.DefaultPatienceLevel)
			if patience > 7 && contains(options, "detailed_research") {
				return "detailed_research", "Based on high patience level", true
			}
			if patience < 3 && contains(options, "quick_overview") {
				return "quick_overview", "Based on low patience level", true
			}
			return "", "", false
		},
	},
}

func oneOf(id string, candidates ...string) bool {
	for _, c := range candidates {
		if id == c {
			return true
		}
	}
	return false
}

func contains(options []string, option string) bool {
	for _, o := range options {
		if o == option {
			return true
		}
	}
	return false
}
