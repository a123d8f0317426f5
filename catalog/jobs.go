package catalog

// sharedTasks 是跨 Job 共享的 fallback 任务集。
// Job 自身任务列表解析不到的 fallback id 会在这里二次解析。
func sharedTasks() map[string]TaskDefinition {
	tasks := []TaskDefinition{
		{
			ID:          "explore_categories",
			Name:        "Explore Product Categories",
			Description: "Browse through available product categories",
			Parameters:  map[string]any{"min_categories": 2, "max_categories": 5},
		},
		{
			ID:          "browse_featured_products",
			Name:        "Browse Featured Products",
			Description: "Look at featured or recommended products",
			Parameters:  map[string]any{"min_products": 1, "max_products": 3},
		},
	}
	out := make(map[string]TaskDefinition, len(tasks))
	for _, t := range tasks {
		out[t.ID] = t
	}
	return out
}

func builtinJobs() []JobDefinition {
	return []JobDefinition{
		productDiscoveryJob(),
		priceCheckJob(),
		purchaseCompletionJob(),
		researchComparisonJob(),
		accountManagementJob(),
	}
}

func productDiscoveryJob() JobDefinition {
	return JobDefinition{
		ID:          "product_discovery",
		Name:        "Product Discovery",
		Description: "Browse the website to discover products of interest",
		Tasks: []TaskDefinition{
			{
				ID:          "navigate_to_homepage",
				Name:        "Navigate to Homepage",
				Description: "Navigate to the website's homepage",
				Required:    true,
			},
			{
				ID:          "explore_categories",
				Name:        "Explore Product Categories",
				Description: "Browse through available product categories",
				Required:    true,
				Parameters:  map[string]any{"min_categories": 2, "max_categories": 5},
			},
			{
				ID:          "browse_featured_products",
				Name:        "Browse Featured Products",
				Description: "Look at featured or recommended products",
				Parameters:  map[string]any{"min_products": 1, "max_products": 3},
			},
			{
				ID:            "examine_product_details",
				Name:          "Examine Product Details",
				Description:   "View detailed information about specific products",
				Required:      true,
				FallbackTasks: []string{"browse_featured_products"},
				Parameters:    map[string]any{"min_products": 2, "max_products": 4},
			},
			{
				ID:          "filter_products",
				Name:        "Filter Products",
				Description: "Apply filters to narrow down product selection",
				Parameters:  map[string]any{"min_filters": 1, "max_filters": 3},
			},
		},
		DecisionPoints: []DecisionPoint{
			{
				ID:          "category_selection",
				Name:        "Category Selection",
				Description: "Which product categories to explore",
				Options:     []string{"preferred_categories", "featured_categories", "random_categories"},
				PersonaFactors: []string{
					"shopping_behavior.product_categories",
					"goals.primary",
				},
			},
			{
				ID:          "product_interest",
				Name:        "Product Interest",
				Description: "Which products to examine in detail",
				Options:     []string{"price_based", "rating_based", "feature_based", "random"},
				PersonaFactors: []string{
					"shopping_behavior.price_sensitivity",
					"e_commerce_specific.importance_of_reviews",
				},
			},
		},
		SuccessCriteria: []string{
			"At least 2 product categories explored",
			"At least 2 product detail pages viewed",
			"Spent minimum of 30 seconds on product pages",
		},
		ApplicablePersonas: []string{PersonaWildcard},
		EstimatedDuration:  DurationRange{Min: 60, Max: 300, Avg: 180},
	}
}

func priceCheckJob() JobDefinition {
	return JobDefinition{
		ID:          "price_check",
		Name:        "Price Check",
		Description: "Search for a specific product to check its price",
		Tasks: []TaskDefinition{
			{
				ID:          "navigate_to_homepage",
				Name:        "Navigate to Homepage",
				Description: "Navigate to the website's homepage",
				Required:    true,
			},
			{
				ID:            "search_for_product",
				Name:          "Search for Product",
				Description:   "Search for a specific product by name",
				Required:      true,
				FallbackTasks: []string{"explore_categories"},
				Parameters:    map[string]any{"search_term": ""},
			},
			{
				ID:          "filter_search_results",
				Name:        "Filter Search Results",
				Description: "Apply filters to narrow down search results",
				Parameters:  map[string]any{"min_filters": 0, "max_filters": 2},
			},
			{
				ID:          "check_product_price",
				Name:        "Check Product Price",
				Description: "View the price of the product",
				Required:    true,
			},
			{
				ID:          "check_shipping_cost",
				Name:        "Check Shipping Cost",
				Description: "View the shipping cost for the product",
			},
		},
		DecisionPoints: []DecisionPoint{
			{
				ID:          "search_method",
				Name:        "Search Method",
				Description: "How to search for the product",
				Options:     []string{"search_bar", "category_navigation", "featured_products"},
				PersonaFactors: []string{
					"technical.proficiency",
					"e_commerce_specific.previous_online_shopping_experience",
				},
			},
			{
				ID:          "price_evaluation",
				Name:        "Price Evaluation",
				Description: "How to evaluate the product price",
				Options:     []string{"compare_options", "check_single_price", "look_for_discounts"},
				PersonaFactors: []string{
					"shopping_behavior.price_sensitivity",
					"shopping_behavior.research_behavior",
				},
			},
		},
		SuccessCriteria: []string{
			"Product successfully found",
			"Price information viewed",
			"Price information understood",
		},
		ApplicablePersonas: []string{PersonaWildcard},
		EstimatedDuration:  DurationRange{Min: 30, Max: 180, Avg: 90},
	}
}

func purchaseCompletionJob() JobDefinition {
	return JobDefinition{
		ID:          "purchase_completion",
		Name:        "Purchase Completion",
		Description: "Search for a product, add to cart, and complete checkout",
		Tasks: []TaskDefinition{
			{
				ID:          "navigate_to_homepage",
				Name:        "Navigate to Homepage",
				Description: "Navigate to the website's homepage",
				Required:    true,
			},
			{
				ID:            "search_for_product",
				Name:          "Search for Product",
				Description:   "Search for a specific product by name",
				Required:      true,
				FallbackTasks: []string{"explore_categories"},
				Parameters:    map[string]any{"search_term": ""},
			},
			{
				ID:          "select_product",
				Name:        "Select Product",
				Description: "Select a product from search results",
				Required:    true,
			},
			{
				ID:          "add_to_cart",
				Name:        "Add to Cart",
				Description: "Add the selected product to the shopping cart",
				Required:    true,
			},
			{
				ID:          "proceed_to_checkout",
				Name:        "Proceed to Checkout",
				Description: "Navigate to the checkout page",
				Required:    true,
			},
			{
				ID:          "fill_shipping_info",
				Name:        "Fill Shipping Information",
				Description: "Enter shipping address and contact information",
				Required:    true,
			},
			{
				ID:          "select_payment_method",
				Name:        "Select Payment Method",
				Description: "Choose a payment method",
				Required:    true,
			},
			{
				ID:          "complete_order",
				Name:        "Complete Order",
				Description: "Finalize the purchase",
				Required:    true,
			},
		},
		DecisionPoints: []DecisionPoint{
			{
				ID:          "product_selection",
				Name:        "Product Selection",
				Description: "Which product to select from search results",
				Options:     []string{"first_result", "best_rated", "lowest_price", "specific_brand"},
				PersonaFactors: []string{
					"shopping_behavior.price_sensitivity",
					"shopping_behavior.brand_loyalty",
				},
			},
			{
				ID:          "payment_selection",
				Name:        "Payment Selection",
				Description: "Which payment method to use",
				Options:     []string{"credit_card", "paypal", "apple_pay", "google_pay"},
				PersonaFactors: []string{
					"technical.payment_methods",
					"technical.proficiency",
				},
			},
			{
				ID:          "shipping_option",
				Name:        "Shipping Option",
				Description: "Which shipping option to select",
				Options:     []string{"standard", "express", "cheapest", "fastest"},
				PersonaFactors: []string{
					"e_commerce_specific.importance_of_shipping_speed",
					"shopping_behavior.price_sensitivity",
				},
			},
		},
		SuccessCriteria: []string{
			"Product successfully added to cart",
			"Shipping information entered correctly",
			"Payment method selected",
			"Order confirmation page reached",
		},
		ApplicablePersonas: []string{PersonaWildcard},
		EstimatedDuration:  DurationRange{Min: 120, Max: 600, Avg: 300},
	}
}

func researchComparisonJob() JobDefinition {
	return JobDefinition{
		ID:          "research_comparison",
		Name:        "Research & Comparison",
		Description: "Research multiple products to compare features and prices",
		Tasks: []TaskDefinition{
			{
				ID:          "navigate_to_homepage",
				Name:        "Navigate to Homepage",
				Description: "Navigate to the website's homepage",
				Required:    true,
			},
			{
				ID:            "search_for_product_category",
				Name:          "Search for Product Category",
				Description:   "Search for a category of products",
				Required:      true,
				FallbackTasks: []string{"explore_categories"},
				Parameters:    map[string]any{"category": ""},
			},
			{
				ID:          "filter_products",
				Name:        "Filter Products",
				Description: "Apply filters to narrow down product selection",
				Required:    true,
				Parameters:  map[string]any{"min_filters": 1, "max_filters": 4},
			},
			{
				ID:          "compare_products",
				Name:        "Compare Products",
				Description: "Compare multiple products side by side",
				Required:    true,
				Parameters:  map[string]any{"min_products": 2, "max_products": 5},
			},
			{
				ID:          "read_reviews",
				Name:        "Read Reviews",
				Description: "Read customer reviews for products",
				Parameters:  map[string]any{"min_reviews": 2, "max_reviews": 5},
			},
			{
				ID:          "check_specifications",
				Name:        "Check Specifications",
				Description: "Review detailed specifications for products",
				Required:    true,
				Parameters:  map[string]any{"min_specs": 3, "max_specs": 8},
			},
		},
		DecisionPoints: []DecisionPoint{
			{
				ID:          "comparison_factors",
				Name:        "Comparison Factors",
				Description: "Which factors to prioritize when comparing products",
				Options:     []string{"price", "features", "reviews", "brand", "availability"},
				PersonaFactors: []string{
					"shopping_behavior.price_sensitivity",
					"shopping_behavior.brand_loyalty",
					"e_commerce_specific.importance_of_reviews",
				},
			},
			{
				ID:          "research_depth",
				Name:        "Research Depth",
				Description: "How deeply to research each product",
				Options:     []string{"quick_overview", "detailed_research", "exhaustive_comparison"},
				PersonaFactors: []string{
					"shopping_behavior.research_behavior",
					"e_commerce_specific.patience_level",
				},
			},
		},
		SuccessCriteria: []string{
			"At least 2 products compared",
			"Key specifications reviewed",
			"Price comparison completed",
			"Minimum of 3 minutes spent on research",
		},
		ApplicablePersonas: []string{"researcher", "value_seeker", "quality_focused"},
		EstimatedDuration:  DurationRange{Min: 180, Max: 900, Avg: 420},
	}
}

func accountManagementJob() JobDefinition {
	return JobDefinition{
		ID:          "account_management",
		Name:        "Account Management",
		Description: "Create an account, manage profile, or check order history",
		Tasks: []TaskDefinition{
			{
				ID:          "navigate_to_homepage",
				Name:        "Navigate to Homepage",
				Description: "Navigate to the website's homepage",
				Required:    true,
			},
			{
				ID:          "find_account_section",
				Name:        "Find Account Section",
				Description: "Locate the account or profile section",
				Required:    true,
			},
			{
				ID:          "create_account",
				Name:        "Create Account",
				Description: "Create a new user account",
			},
			{
				ID:          "login_to_account",
				Name:        "Login to Account",
				Description: "Log in to an existing account",
			},
			{
				ID:          "update_profile",
				Name:        "Update Profile",
				Description: "Update profile information",
			},
			{
				ID:          "check_order_history",
				Name:        "Check Order History",
				Description: "View order history and status",
			},
			{
				ID:          "manage_payment_methods",
				Name:        "Manage Payment Methods",
				Description: "Add or update payment methods",
			},
			{
				ID:          "manage_addresses",
				Name:        "Manage Addresses",
				Description: "Add or update shipping addresses",
			},
		},
		DecisionPoints: []DecisionPoint{
			{
				ID:          "account_action",
				Name:        "Account Action",
				Description: "What account management action to perform",
				Options:     []string{"create_new", "login_existing", "update_profile", "check_orders"},
				PersonaFactors: []string{
					"e_commerce_specific.previous_online_shopping_experience",
					"technical.proficiency",
				},
			},
			{
				ID:          "information_sharing",
				Name:        "Information Sharing",
				Description: "How much personal information to provide",
				Options:     []string{"minimal", "standard", "detailed"},
				PersonaFactors: []string{
					"demographics.age",
					"technical.proficiency",
				},
			},
		},
		SuccessCriteria: []string{
			"Account section successfully located",
			"Primary account action completed",
			"Navigation through account settings completed",
		},
		ApplicablePersonas: []string{PersonaWildcard},
		EstimatedDuration:  DurationRange{Min: 60, Max: 300, Avg: 180},
	}
}
