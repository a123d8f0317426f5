package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSiteType(t *testing.T) {
	tests := []struct {
		name string
		html string
		want SiteType
	}{
		{"shopify theme object", `<script>Shopify.theme = {"name":"Dawn"}</script>`, SiteShopify},
		{"shopify cdn asset", `<link href="https://cdn.shopify.com/s/files/theme.css">`, SiteShopify},
		{"woocommerce class", `<body class="woocommerce-page archive">`, SiteWooCommerce},
		{"wordpress assets", `<script src="/wp-content/plugins/cart/cart.js">`, SiteWooCommerce},
		{"plain site", `<html><body><h1>Store</h1></body></html>`, SiteDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectSiteType(tt.html))
		})
	}
}

func TestSelectorsForSite(t *testing.T) {
	defaults := DefaultSelectors()

	shopify := SelectorsForSite(SiteShopify)
	assert.Equal(t, []string{`input[name="q"]`, `input[aria-label="Search"]`}, shopify.SearchInputs)
	assert.Contains(t, shopify.AddToCartButtons, `button[name="add"]`)
	// 未覆盖的字段沿用默认
	assert.Equal(t, defaults.CheckoutButtons, shopify.CheckoutButtons)
	assert.Equal(t, defaults.CategoryLinks, shopify.CategoryLinks)

	woo := SelectorsForSite(SiteWooCommerce)
	assert.Contains(t, woo.AddToCartButtons, `button.add_to_cart_button`)
	assert.Contains(t, woo.CheckoutButtons, `.wc-proceed-to-checkout`)
	assert.Equal(t, defaults.SearchInputs, woo.SearchInputs)

	assert.Equal(t, defaults, SelectorsForSite(SiteDefault))
	assert.Equal(t, defaults, SelectorsForSite(SiteType("unknown")))
}

func TestIsXPath(t *testing.T) {
	assert.True(t, IsXPath(`//button[contains(., "Checkout")]`))
	assert.False(t, IsXPath(`button[type="submit"]`))
	assert.False(t, IsXPath(`.checkout-button`))
}

func TestClassifyWebsite(t *testing.T) {
	tests := []struct {
		name string
		url  string
		text string
		want string
	}{
		{
			name: "fashion store",
			url:  "https://shop.example.com",
			text: "Add to cart. Free shipping on shoes, clothing and accessories. Checkout now, best price.",
			want: "ecommerce-fashion",
		},
		{
			name: "electronics store",
			url:  "https://shop.example.com",
			text: "Buy the latest phone and computer gadgets. Cart, checkout, fast shipping on tech.",
			want: "ecommerce-electronics",
		},
		{
			name: "generic store without category signal",
			url:  "https://shop.example.com",
			text: "Shop our store: add to cart, price match, secure checkout and payment.",
			want: "ecommerce-general",
		},
		{
			name: "blog domain",
			url:  "https://blog.example.com/posts/1",
			text: "Thoughts on gardening.",
			want: "content-blog",
		},
		{
			name: "portfolio domain",
			url:  "https://gallery.example.com",
			text: "Selected works.",
			want: "portfolio",
		},
		{
			name: "no signal",
			url:  "https://example.com",
			text: "Welcome.",
			want: "general",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyWebsite(tt.url, tt.text))
		})
	}
}
