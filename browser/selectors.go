package browser

import (
	"net/url"
	"strings"
)

// SelectorConfig 各类页面元素的候选选择器列表，按顺序尝试。
// 以 "//" 开头的条目为 XPath，其余为 CSS。
type SelectorConfig struct {
	SearchInputs     []string
	SearchButtons    []string
	CategoryLinks    []string
	ProductLinks     []string
	AddToCartButtons []string
	CheckoutButtons  []string
	FilterControls   []string
	PriceElements    []string
	ShippingInfo     []string
	ReviewSections   []string
	SpecSections     []string
	AccountLinks     []string
}

// DefaultSelectors 通用商城的选择器集合。
func DefaultSelectors() SelectorConfig {
	return SelectorConfig{
		SearchInputs: []string{
			`input[type="search"]`,
			`input[placeholder*="search" i]`,
			`input[placeholder*="find" i]`,
			`input[name*="search" i]`,
			`input[id*="search" i]`,
			`input[class*="search" i]`,
			`.search-input`,
			`#search`,
		},
		SearchButtons: []string{
			`button[type="submit"]`,
			`button.search-button`,
			`button[aria-label*="search" i]`,
			`input[type="submit"]`,
		},
		CategoryLinks: []string{
			`a[href*="category"]`,
			`a[href*="department"]`,
			`.category-link`,
			`.department-link`,
			`nav a`,
		},
		ProductLinks: []string{
			`.product-card`,
			`.product-link`,
			`a[href*="product"]`,
			`.item-card`,
		},
		AddToCartButtons: []string{
			`button[id*="add-to-cart"]`,
			`button[class*="add-to-cart"]`,
			`//button[contains(., "Add to Cart")]`,
			`//button[contains(., "Buy Now")]`,
			`button.buy-button`,
		},
		CheckoutButtons: []string{
			`a[href*="checkout"]`,
			`//button[contains(., "Checkout")]`,
			`//button[contains(., "Proceed to Checkout")]`,
			`.checkout-button`,
		},
		FilterControls: []string{
			`input[type="checkbox"]`,
			`.filter-option`,
			`.facet-option`,
			`select`,
			`.dropdown`,
		},
		PriceElements: []string{
			`.price`,
			`[class*="price"]`,
			`[id*="price"]`,
			`.product-price`,
			`.amount`,
		},
		ShippingInfo: []string{
			`[class*="shipping"]`,
			`[id*="shipping"]`,
			`.delivery-info`,
			`[class*="delivery"]`,
			`[data-test*="shipping"]`,
		},
		ReviewSections: []string{
			`[class*="review"]`,
			`[id*="review"]`,
			`.reviews-section`,
			`.ratings-and-reviews`,
			`[data-test*="review"]`,
		},
		SpecSections: []string{
			`[class*="specification"]`,
			`[class*="spec"]`,
			`[id*="specification"]`,
			`[id*="spec"]`,
			`.product-details`,
			`.technical-details`,
			`.features`,
		},
		AccountLinks: []string{
			`a[href*="account"]`,
			`a[href*="login"]`,
			`a[href*="profile"]`,
			`[class*="account"]`,
			`[class*="login"]`,
			`[class*="user"]`,
			`header [class*="account"]`,
			`header [class*="login"]`,
		},
	}
}

// SiteType 目标站点的技术栈类型，决定启用哪套选择器。
type SiteType string

const (
	SiteDefault     SiteType = "default"
	SiteShopify     SiteType = "shopify"
	SiteWooCommerce SiteType = "woocommerce"
)

// SelectorsForSite 返回指定站点类型的选择器集合。
// 站点特定配置只覆盖有针对性的字段，其余沿用默认集合。
func SelectorsForSite(site SiteType) SelectorConfig {
	config := DefaultSelectors()
	switch site {
	case SiteShopify:
		config.SearchInputs = []string{
			`input[name="q"]`,
			`input[aria-label="Search"]`,
		}
		config.AddToCartButtons = []string{
			`button[name="add"]`,
			`button.product-form__submit`,
		}
	case SiteWooCommerce:
		config.AddToCartButtons = []string{
			`button.add_to_cart_button`,
			`button.single_add_to_cart_button`,
		}
		config.CheckoutButtons = []string{
			`a.checkout-button`,
			`.wc-proceed-to-checkout`,
		}
	}
	return config
}

// DetectSiteType 根据页面 HTML 识别站点技术栈。
func DetectSiteType(html string) SiteType {
	switch {
	case strings.Contains(html, "Shopify.theme") || strings.Contains(html, "cdn.shopify.com"):
		return SiteShopify
	case strings.Contains(html, "woocommerce") || strings.Contains(html, "wp-content"):
		return SiteWooCommerce
	default:
		return SiteDefault
	}
}

// IsXPath 报告选择器是否为 XPath 表达式。
func IsXPath(selector string) bool {
	return strings.HasPrefix(selector, "//")
}

var ecommerceIndicators = []string{
	"cart", "shop", "product", "buy", "price", "checkout", "shipping",
	"order", "payment", "add to cart", "purchase", "store",
}

var categoryIndicators = map[string][]string{
	"fashion":     {"clothing", "fashion", "apparel", "wear", "shoes", "accessories", "style"},
	"electronics": {"electronics", "computer", "phone", "gadget", "tech", "device"},
	"food":        {"food", "grocery", "meal", "recipe", "ingredient", "restaurant", "dish"},
	"home":        {"furniture", "home", "decor", "kitchen", "garden", "interior"},
	"beauty":      {"beauty", "cosmetic", "makeup", "skin", "hair", "fragrance"},
}

// ClassifyWebsite 根据页面文本与域名粗分站点类别，用于评估报告。
// 返回值形如 "ecommerce-fashion"、"ecommerce-general"、"content-blog"、
// "portfolio" 或 "general"。
func ClassifyWebsite(rawURL, pageText string) string {
	text := strings.ToLower(pageText)

	ecommerceScore := 0
	for _, indicator := range ecommerceIndicators {
		if strings.Contains(text, indicator) {
			ecommerceScore++
		}
	}

	if ecommerceScore > 2 {
		bestCategory, bestScore := "", 0
		for category, indicators := range categoryIndicators {
			score := 0
			for _, indicator := range indicators {
				if strings.Contains(text, indicator) {
					score++
				}
			}
			// 并列时取字典序靠前的类别，保证结果可复现。
			if score > bestScore || (score == bestScore && bestCategory != "" && category < bestCategory) {
				bestCategory, bestScore = category, score
			}
		}
		if bestScore > 1 {
			return "ecommerce-" + bestCategory
		}
		return "ecommerce-general"
	}

	domain := ""
	if u, err := url.Parse(rawURL); err == nil {
		domain = strings.ToLower(u.Hostname())
	}
	for _, term := range []string{"blog", "article", "news"} {
		if strings.Contains(domain, term) {
			return "content-blog"
		}
	}
	for _, term := range []string{"portfolio", "gallery"} {
		if strings.Contains(domain, term) {
			return "portfolio"
		}
	}
	return "general"
}
