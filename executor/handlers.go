package executor

import (
	"fmt"
	"strings"
	"time"

	"github.com/BaSui01/shopsim/browser"
	"github.com/BaSui01/shopsim/planner"
)

// dispatch 把任务 id 路由到对应处理器。以 "search" 开头的任务共用搜索
// 处理器，以 "fill_" 开头的任务共用表单处理器，无处理器的任务直接判失败。
func (e *Executor) dispatch(task planner.ExecutionTask, start time.Time) TaskResult {
	switch {
	case task.ID == "navigate_to_homepage":
		return e.runNavigation(task, start)
	case strings.HasPrefix(task.ID, "search"):
		return e.runSearch(task, start)
	case task.ID == "explore_categories":
		return e.runCategoryExploration(task, start)
	case task.ID == "examine_product_details" || task.ID == "browse_featured_products":
		return e.runProductExamination(task, start)
	case task.ID == "select_product":
		return e.runProductSelection(task, start)
	case task.ID == "add_to_cart":
		return e.runAddToCart(task, start)
	case task.ID == "proceed_to_checkout":
		return e.runCheckout(task, start)
	case task.ID == "filter_products" || task.ID == "filter_search_results":
		return e.runFilter(task, start)
	case task.ID == "check_product_price":
		return e.runPriceCheck(task, start)
	case task.ID == "check_shipping_cost":
		return e.runShippingCheck(task, start)
	case task.ID == "read_reviews":
		return e.runReviewReading(task, start)
	case task.ID == "check_specifications":
		return e.runSpecificationCheck(task, start)
	case task.ID == "find_account_section":
		return e.runFindAccount(task, start)
	case strings.HasPrefix(task.ID, "fill_"):
		return e.runFormFill(task, start)
	default:
		return TaskResult{
			TaskID:       task.ID,
			Success:      false,
			Duration:     time.Since(start),
			ErrorMessage: fmt.Sprintf("unknown task type: %s", task.ID),
		}
	}
}

func (e *Executor) runNavigation(task planner.ExecutionTask, start time.Time) TaskResult {
	navResult := e.browser.Navigate(e.results.WebsiteURL)
	return TaskResult{
		TaskID:       task.ID,
		Success:      navResult.Success,
		Duration:     time.Since(start),
		ErrorMessage: navResult.Error,
		Metrics:      map[string]any{"load_time": navResult.LoadTime},
		Screenshots:  nonEmpty(navResult.Screenshot),
	}
}

func (e *Executor) runSearch(task planner.ExecutionTask, start time.Time) TaskResult {
	searchTerm := paramString(task.Parameters, "search_term", "product")
	searchResult := e.browser.Search(searchTerm)
	return TaskResult{
		TaskID:       task.ID,
		Success:      searchResult.Success,
		Duration:     time.Since(start),
		ErrorMessage: searchResult.Error,
		Metrics:      map[string]any{"time_to_find": searchResult.TimeTaken},
		Screenshots:  nonEmpty(searchResult.Screenshot),
	}
}

// runCategoryExploration 浏览若干分类页。决策选中 preferred_categories
// 时优先点击画像偏好分类的链接，数量不足再落回通用分类选择器。
func (e *Executor) runCategoryExploration(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	minCategories := paramInt(task.Parameters, "min_categories", 2)
	maxCategories := paramInt(task.Parameters, "max_categories", 5)
	target := minInt(maxInt(minCategories, 2), maxCategories)

	explored := 0
	if paramString(task.Parameters, "selection_method", "") == "preferred_categories" {
		preferred := e.plan.Persona.Strings("shopping_behavior.product_categories")
		for _, category := range preferred {
			if explored >= target {
				break
			}
			selector := fmt.Sprintf(`//a[contains(., %q)]`, category)
			if !e.browser.Click(selector) {
				continue
			}
			explored++
			screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("category_"+category))

			e.browser.Scroll(browser.ScrollMedium, browser.ScrollDown)
			e.browser.Pause(time.Second, 2*time.Second)
			e.browser.Navigate(e.results.WebsiteURL)
		}
	}

	if explored < minCategories {
		for _, selector := range e.browser.Selectors().CategoryLinks {
			if explored >= target {
				break
			}
			if !e.browser.Click(selector) {
				continue
			}
			explored++
			screenshots = appendShot(screenshots, e.browser.CaptureScreenshot(fmt.Sprintf("category_%d", explored)))

			e.browser.Scroll(browser.ScrollMedium, browser.ScrollDown)
			e.browser.Pause(time.Second, 2*time.Second)
			e.browser.Navigate(e.results.WebsiteURL)
		}
	}

	success := explored >= minCategories
	errorMessage := ""
	if !success {
		errorMessage = fmt.Sprintf("only explored %d categories, minimum required: %d", explored, minCategories)
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"categories_explored": explored},
		Screenshots:  screenshots,
	}
}

// runProductExamination 逐个打开商品页浏览。价格导向或评分导向的
// 决策会先尝试带附加条件的选择器，失败再退回普通选择器。
func (e *Executor) runProductExamination(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	minProducts := paramInt(task.Parameters, "min_products", 2)
	maxProducts := paramInt(task.Parameters, "max_products", 4)
	target := minInt(maxInt(minProducts, 2), maxProducts)
	criteria := paramString(task.Parameters, "selection_criteria", "random")

	examined := 0
	for _, selector := range e.browser.Selectors().ProductLinks {
		if examined >= target {
			break
		}

		clicked := false
		switch criteria {
		case "price_based":
			clicked = e.browser.Click(selector+`:has(.price, [class*="price"])`) || e.browser.Click(selector)
		case "rating_based":
			clicked = e.browser.Click(selector+`:has(.rating, [class*="rating"], [class*="star"])`) || e.browser.Click(selector)
		default:
			clicked = e.browser.Click(selector)
		}
		if !clicked {
			continue
		}

		examined++
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot(fmt.Sprintf("product_%d", examined)))

		e.browser.Scroll(browser.ScrollLong, browser.ScrollDown)
		e.browser.Pause(2*time.Second, 4*time.Second)
		e.browser.Navigate(e.results.WebsiteURL)
	}

	success := examined >= minProducts
	errorMessage := ""
	if !success {
		errorMessage = fmt.Sprintf("only examined %d products, minimum required: %d", examined, minProducts)
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"products_examined": examined},
		Screenshots:  screenshots,
	}
}

// runProductSelection 打开一个商品页并停留，为后续加购做准备。
func (e *Executor) runProductSelection(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	for _, selector := range e.browser.Selectors().ProductLinks {
		if !e.browser.Click(selector) {
			continue
		}
		e.browser.Pause(time.Second, 2*time.Second)
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("selected_product"))
		return TaskResult{
			TaskID:      task.ID,
			Success:     true,
			Duration:    time.Since(start),
			Screenshots: screenshots,
		}
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      false,
		Duration:     time.Since(start),
		ErrorMessage: "could not find a product to select",
	}
}

func (e *Executor) runAddToCart(task planner.ExecutionTask, start time.Time) TaskResult {
	productSelector := paramString(task.Parameters, "product_selector", "")
	if productSelector == "" {
		for _, selector := range e.browser.Selectors().ProductLinks {
			if e.browser.Click(selector) {
				productSelector = selector
				break
			}
		}
	}

	cartResult := e.browser.AddToCart(productSelector)
	return TaskResult{
		TaskID:       task.ID,
		Success:      cartResult.Success,
		Duration:     time.Since(start),
		ErrorMessage: cartResult.Error,
		Metrics:      map[string]any{"time_to_add": cartResult.TimeTaken},
		Screenshots:  nonEmpty(cartResult.Screenshot),
	}
}

func (e *Executor) runCheckout(task planner.ExecutionTask, start time.Time) TaskResult {
	checkoutResult := e.browser.ProceedToCheckout()
	return TaskResult{
		TaskID:       task.ID,
		Success:      checkoutResult.Success,
		Duration:     time.Since(start),
		ErrorMessage: checkoutResult.Error,
		Metrics:      map[string]any{"time_to_checkout": checkoutResult.TimeTaken},
		Screenshots:  nonEmpty(checkoutResult.Screenshot),
	}
}

// runFilter 应用若干筛选控件：每种控件类型随机点一个。
func (e *Executor) runFilter(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	minFilters := paramInt(task.Parameters, "min_filters", 1)
	maxFilters := paramInt(task.Parameters, "max_filters", 3)
	target := minInt(maxInt(minFilters, 1), maxFilters)

	applied := 0
	for _, selector := range e.browser.Selectors().FilterControls {
		if applied >= target {
			break
		}
		count := e.browser.Count(selector)
		if count == 0 {
			continue
		}
		index := e.rng.Intn(minInt(count, 6))
		if !e.browser.ClickNth(selector, index) {
			continue
		}
		applied++
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot(fmt.Sprintf("filter_%d", applied)))
		e.browser.Pause(time.Second, 2*time.Second)
	}

	success := applied >= minFilters
	errorMessage := ""
	if !success {
		errorMessage = fmt.Sprintf("only applied %d filters, minimum required: %d", applied, minFilters)
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"filters_applied": applied},
		Screenshots:  screenshots,
	}
}

func (e *Executor) runPriceCheck(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	priceText := ""
	for _, selector := range e.browser.Selectors().PriceElements {
		if !e.browser.FindElement(selector, 0) {
			continue
		}
		if text, ok := e.browser.TextContent(selector); ok && text != "" {
			priceText = text
			screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("price_check"))
			break
		}
	}

	errorMessage := ""
	if priceText == "" {
		errorMessage = "could not find price information"
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      priceText != "",
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"price_text": priceText},
		Screenshots:  screenshots,
	}
}

func (e *Executor) runShippingCheck(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	shippingText := ""
	for _, selector := range e.browser.Selectors().ShippingInfo {
		if !e.browser.FindElement(selector, 0) {
			continue
		}
		if text, ok := e.browser.TextContent(selector); ok && text != "" {
			shippingText = text
			screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("shipping_check"))
			break
		}
	}

	errorMessage := ""
	if shippingText == "" {
		errorMessage = "could not find shipping information"
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      shippingText != "",
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"shipping_text": shippingText},
		Screenshots:  screenshots,
	}
}

// runReviewReading 定位评论区并滚动浏览若干条评论。
func (e *Executor) runReviewReading(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	minReviews := paramInt(task.Parameters, "min_reviews", 2)
	maxReviews := paramInt(task.Parameters, "max_reviews", 5)
	target := minInt(maxInt(minReviews, 2), maxReviews)

	sectionFound := false
	reviewsRead := 0
	for _, selector := range e.browser.Selectors().ReviewSections {
		if !e.browser.FindElement(selector, 0) {
			continue
		}
		sectionFound = true

		e.browser.ScrollIntoView(selector)
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("reviews_section"))
		e.browser.Pause(time.Second, 2*time.Second)

		reviewsRead = minInt(target, e.browser.Count(selector+" > *"))
		for i := 0; i < minInt(3, reviewsRead); i++ {
			e.browser.Scroll(browser.ScrollShort, browser.ScrollDown)
			e.browser.Pause(time.Second, 2*time.Second)
		}
		break
	}

	success := sectionFound && reviewsRead >= minReviews
	errorMessage := ""
	if !sectionFound {
		errorMessage = "could not find review section"
	} else if reviewsRead < minReviews {
		errorMessage = fmt.Sprintf("only found %d reviews, minimum required: %d", reviewsRead, minReviews)
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"reviews_read": reviewsRead},
		Screenshots:  screenshots,
	}
}

// runSpecificationCheck 定位规格区并统计规格条目数。
func (e *Executor) runSpecificationCheck(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	minSpecs := paramInt(task.Parameters, "min_specs", 3)
	maxSpecs := paramInt(task.Parameters, "max_specs", 8)
	target := minInt(maxInt(minSpecs, 3), maxSpecs)

	sectionFound := false
	specsCount := 0
	for _, selector := range e.browser.Selectors().SpecSections {
		if !e.browser.FindElement(selector, 0) {
			continue
		}
		sectionFound = true

		e.browser.ScrollIntoView(selector)
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("specifications"))
		e.browser.Pause(time.Second, 2*time.Second)

		rows := maxInt(e.browser.Count(selector+" tr"),
			maxInt(e.browser.Count(selector+" li"), e.browser.Count(selector+" > *")))
		specsCount = minInt(target, rows)

		for i := 0; i < minInt(3, specsCount); i++ {
			e.browser.Scroll(browser.ScrollShort, browser.ScrollDown)
			e.browser.Pause(500*time.Millisecond, 1500*time.Millisecond)
		}
		break
	}

	success := sectionFound && specsCount >= minSpecs
	errorMessage := ""
	if !sectionFound {
		errorMessage = "could not find specifications section"
	} else if specsCount < minSpecs {
		errorMessage = fmt.Sprintf("only found %d specifications, minimum required: %d", specsCount, minSpecs)
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"specs_examined": specsCount},
		Screenshots:  screenshots,
	}
}

// runFindAccount 定位账户入口，点进账户页看一眼再返回首页。
func (e *Executor) runFindAccount(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	found := false
	for _, selector := range e.browser.Selectors().AccountLinks {
		if !e.browser.FindElement(selector, 0) {
			continue
		}
		found = true
		screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("account_section"))

		if e.browser.Click(selector) {
			e.browser.Pause(time.Second, 2*time.Second)
			screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("account_page"))
			e.browser.Navigate(e.results.WebsiteURL)
		}
		break
	}

	errorMessage := ""
	if !found {
		errorMessage = "could not find account section"
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      found,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Screenshots:  screenshots,
	}
}

// runFormFill 按字段名尝试常见的输入框选择器，至少填上一个即算成功。
func (e *Executor) runFormFill(task planner.ExecutionTask, start time.Time) TaskResult {
	var screenshots []string

	formFields := paramStringMap(task.Parameters, "form_fields")
	if len(formFields) == 0 {
		return TaskResult{
			TaskID:       task.ID,
			Success:      false,
			Duration:     time.Since(start),
			ErrorMessage: "no form fields specified",
		}
	}

	filled := 0
	for fieldName, fieldValue := range formFields {
		fieldSelectors := []string{
			fmt.Sprintf(`input[name=%q]`, fieldName),
			fmt.Sprintf(`input[id=%q]`, fieldName),
			fmt.Sprintf(`input[placeholder*=%q i]`, fieldName),
			fmt.Sprintf(`textarea[name=%q]`, fieldName),
			fmt.Sprintf(`select[name=%q]`, fieldName),
		}
		for _, selector := range fieldSelectors {
			if e.browser.FillForm(selector, fieldValue) {
				filled++
				break
			}
		}
	}

	screenshots = appendShot(screenshots, e.browser.CaptureScreenshot("form_fill_"+task.ID))

	success := filled > 0
	errorMessage := ""
	if !success {
		errorMessage = "could not fill any form fields"
	}
	return TaskResult{
		TaskID:       task.ID,
		Success:      success,
		Duration:     time.Since(start),
		ErrorMessage: errorMessage,
		Metrics:      map[string]any{"fields_filled": filled},
		Screenshots:  screenshots,
	}
}

func paramInt(params map[string]any, key string, fallback int) int {
	switch v := params[key].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return fallback
	}
}

func paramString(params map[string]any, key, fallback string) string {
	if v, ok := params[key].(string); ok {
		return v
	}
	return fallback
}

func paramStringMap(params map[string]any, key string) map[string]string {
	out := make(map[string]string)
	switch v := params[key].(type) {
	case map[string]string:
		return v
	case map[string]any:
		for name, value := range v {
			if s, ok := value.(string); ok {
				out[name] = s
			}
		}
	}
	return out
}

func nonEmpty(shot string) []string {
	if shot == "" {
		return nil
	}
	return []string{shot}
}

func appendShot(shots []string, shot string) []string {
	if shot == "" {
		return shots
	}
	return append(shots, shot)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
