package browser

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"

	"github.com/BaSui01/shopsim/persona"
)

// PersonaBrowser 将画像特质注入到每一次页面动作：节奏、超时、视觉扫描
// 与挫败感追踪都按画像调整。所有公开方法返回结构化结果而非错误——一次
// 失败的动作是可评估的遥测数据，不是异常。
//
// 实例绑定单个隔离子上下文，供单个任务执行器串行使用，不做并发保护。
type PersonaBrowser struct {
	sub    *SubContext
	config Config
	logger *zap.Logger
	rng    *rand.Rand

	traits  persona.Traits
	profile persona.Profile

	selectors SelectorConfig
	siteType  SiteType
	website   string

	currentURL  string
	events      []Event
	lastAction  time.Time
	loadTimes   map[string]time.Duration
	navigations []NavigationRecord
	frustration int
	a11yIssues  []string

	// 默认超时：普通操作 30s + patience·5s，单次导航最长 60s。
	defaultTimeout time.Duration

	// 测试替身：sleep 取代真实等待，run 取代 chromedp.Run，
	// navigate 取代带响应拦截的页面跳转。
	sleep    func(time.Duration)
	run      func(timeout time.Duration, actions ...chromedp.Action) error
	navigate func(timeout time.Duration, url string) (status int64, err error)
}

// NewPersonaBrowser 在给定子上下文上创建画像感知的浏览器外观，
// 并按画像主设备设置视口。
func NewPersonaBrowser(sub *SubContext, profile persona.Profile, config Config, logger *zap.Logger) (*PersonaBrowser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	traits := persona.ExtractTraits(profile)

	b := &PersonaBrowser{
		sub:            sub,
		config:         config,
		logger:         logger.With(zap.String("component", "persona_browser")),
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
		traits:         traits,
		profile:        profile,
		selectors:      DefaultSelectors(),
		siteType:       SiteDefault,
		lastAction:     time.Now(),
		loadTimes:      make(map[string]time.Duration),
		defaultTimeout: 30*time.Second + time.Duration(traits.PatienceLevel)*5*time.Second,
		sleep:          time.Sleep,
	}
	b.run = b.runChromedp
	b.navigate = b.navigateChromedp

	if config.ScreenshotDir != "" {
		if err := os.MkdirAll(config.ScreenshotDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create screenshot dir: %w", err)
		}
	}

	vp := ViewportForDevice(traits.PrimaryDevice)
	if err := b.run(b.defaultTimeout, chromedp.EmulateViewport(int64(vp.Width), int64(vp.Height))); err != nil {
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	b.logger.Debug("persona browser ready",
		zap.Int("tech_proficiency", traits.TechProficiency),
		zap.Int("patience_level", traits.PatienceLevel),
		zap.String("device", traits.PrimaryDevice))
	return b, nil
}

func (b *PersonaBrowser) runChromedp(timeout time.Duration, actions ...chromedp.Action) error {
	ctx, cancel := context.WithTimeout(b.sub.Context(), timeout)
	defer cancel()
	return chromedp.Run(ctx, actions...)
}

// navigateChromedp 通过响应拦截执行跳转，带回主文档的 HTTP 状态码。
func (b *PersonaBrowser) navigateChromedp(timeout time.Duration, url string) (int64, error) {
	ctx, cancel := context.WithTimeout(b.sub.Context(), timeout)
	defer cancel()

	resp, err := chromedp.RunResponse(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return 0, err
	}
	if resp == nil {
		// about:blank 等无网络往返的跳转没有响应对象
		return 0, nil
	}
	return resp.Status, nil
}

// byOption 根据选择器语法选择定位策略。
func byOption(selector string) chromedp.QueryOption {
	if IsXPath(selector) {
		return chromedp.BySearch
	}
	return chromedp.ByQuery
}

// Navigate 导航到目标 URL，记录加载耗时、导航历史与截图，随后执行
// 页面加载后的习惯性浏览行为并识别站点类型。
func (b *PersonaBrowser) Navigate(url string) NavigationResult {
	if !b.ensureValidPage() {
		b.frustration++
		return NavigationResult{Success: false, Error: "failed to recover page"}
	}

	start := time.Now()
	b.realisticDelay(500*time.Millisecond, 1500*time.Millisecond)

	status, err := b.navigate(60*time.Second, url)
	if err != nil {
		b.frustration++
		b.logger.Warn("navigation failed", zap.String("url", url), zap.Error(err))
		return NavigationResult{Success: false, Error: err.Error()}
	}

	b.currentURL = url
	loadTime := time.Since(start)
	b.loadTimes[url] = loadTime
	b.navigations = append(b.navigations, NavigationRecord{
		URL:       url,
		StartedAt: start,
		LoadTime:  loadTime,
		Status:    status,
	})
	b.trackEvent("navigation", map[string]any{"url": url})

	screenshot := b.CaptureScreenshot(fmt.Sprintf("navigate_%d", len(b.navigations)))

	b.postNavigationBehavior(loadTime)
	b.detectSiteType()
	b.scanAccessibility()

	return NavigationResult{
		Success:    true,
		LoadTime:   loadTime,
		Status:     status,
		Screenshot: screenshot,
	}
}

// detectSiteType 读取页面 HTML，切换站点专属选择器并归类站点类别。
func (b *PersonaBrowser) detectSiteType() {
	var html, pageText string
	err := b.run(10*time.Second,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Text("body", &pageText, chromedp.ByQuery),
	)
	if err != nil {
		b.siteType = SiteDefault
		b.selectors = DefaultSelectors()
		return
	}

	b.siteType = DetectSiteType(html)
	b.selectors = SelectorsForSite(b.siteType)
	b.website = ClassifyWebsite(b.currentURL, pageText)

	b.logger.Debug("site detected",
		zap.String("site_type", string(b.siteType)),
		zap.String("website_type", b.website))
}

// FindElement 等待选择器出现。不耐烦的画像放弃得更快，技术不熟练的
// 画像先做一轮视觉扫描。失败累积挫败感。
func (b *PersonaBrowser) FindElement(selector string, timeout time.Duration) bool {
	if !b.ensureValidPage() {
		return false
	}
	if timeout <= 0 {
		timeout = time.Second + time.Duration(b.traits.PatienceLevel)*time.Second
	}

	b.realisticDelay(200*time.Millisecond, 800*time.Millisecond)

	if b.traits.TechProficiency <= 7 {
		b.visualScan()
	}

	if err := b.run(timeout, chromedp.WaitVisible(selector, byOption(selector))); err != nil {
		b.frustration++
		return false
	}
	return true
}

// Click 定位并点击元素，点击前模拟鼠标移动。
func (b *PersonaBrowser) Click(selector string) bool {
	if !b.ensureValidPage() {
		return false
	}
	if !b.FindElement(selector, 0) {
		return false
	}

	b.realisticDelay(300*time.Millisecond, time.Second)
	b.moveMouseTo(selector)

	if err := b.run(b.defaultTimeout, chromedp.Click(selector, byOption(selector))); err != nil {
		b.frustration++
		return false
	}
	b.trackEvent("click", map[string]any{"selector": selector})
	return true
}

// FillForm 清空字段后按画像打字速度逐步输入。
func (b *PersonaBrowser) FillForm(selector, value string) bool {
	if !b.ensureValidPage() {
		return false
	}
	if !b.FindElement(selector, 0) {
		return false
	}

	b.realisticDelay(300*time.Millisecond, 800*time.Millisecond)

	if err := b.run(b.defaultTimeout,
		chromedp.Click(selector, byOption(selector)),
		chromedp.Clear(selector, byOption(selector)),
	); err != nil {
		b.frustration++
		return false
	}

	b.sleep(time.Duration(float64(len(value)) * float64(b.TypingSpeed())))

	if err := b.run(b.defaultTimeout, chromedp.SendKeys(selector, value, byOption(selector))); err != nil {
		b.frustration++
		return false
	}

	b.trackEvent("form_fill", map[string]any{
		"selector": selector,
		"length":   len(value),
	})
	return true
}

// Search 按当前站点的搜索框选择器逐个尝试；找不到搜索按钮时回退为回车。
func (b *PersonaBrowser) Search(query string) ActionResult {
	if !b.ensureValidPage() {
		return ActionResult{Success: false, Error: "invalid page"}
	}

	start := time.Now()

	inputSelector := ""
	for _, selector := range b.selectors.SearchInputs {
		if b.FindElement(selector, 2*time.Second) {
			inputSelector = selector
			break
		}
	}
	if inputSelector == "" {
		return ActionResult{Success: false, Error: "could not find search input"}
	}

	if !b.FillForm(inputSelector, query) {
		return ActionResult{Success: false, Error: "could not fill search input"}
	}

	clicked := false
	for _, selector := range b.selectors.SearchButtons {
		if b.FindElement(selector, 2*time.Second) {
			clicked = b.Click(selector)
			break
		}
	}
	if !clicked {
		b.PressEnter()
	}

	b.realisticDelay(time.Second, 3*time.Second)

	screenshot := b.CaptureScreenshot("search_" + strings.ReplaceAll(query, " ", "_"))
	return ActionResult{
		Success:    true,
		SearchTerm: query,
		TimeTaken:  time.Since(start),
		Screenshot: screenshot,
	}
}

// AddToCart 可选地先点开商品，再逐个尝试加入购物车按钮。
func (b *PersonaBrowser) AddToCart(productSelector string) ActionResult {
	if !b.ensureValidPage() {
		return ActionResult{Success: false, Error: "invalid page"}
	}

	start := time.Now()

	if productSelector != "" {
		if !b.Click(productSelector) {
			return ActionResult{Success: false, Error: "could not click product"}
		}
		b.realisticDelay(time.Second, 3*time.Second)
	}

	for _, selector := range b.selectors.AddToCartButtons {
		if b.Click(selector) {
			b.realisticDelay(time.Second, 2*time.Second)
			screenshot := b.CaptureScreenshot("add_to_cart")
			return ActionResult{
				Success:    true,
				TimeTaken:  time.Since(start),
				Screenshot: screenshot,
			}
		}
	}
	return ActionResult{Success: false, Error: "could not find add to cart button"}
}

// ProceedToCheckout 逐个尝试结算入口按钮。
func (b *PersonaBrowser) ProceedToCheckout() ActionResult {
	if !b.ensureValidPage() {
		return ActionResult{Success: false, Error: "invalid page"}
	}

	start := time.Now()

	for _, selector := range b.selectors.CheckoutButtons {
		if b.Click(selector) {
			b.realisticDelay(time.Second, 3*time.Second)
			screenshot := b.CaptureScreenshot("checkout")
			return ActionResult{
				Success:    true,
				TimeTaken:  time.Since(start),
				Screenshot: screenshot,
			}
		}
	}
	return ActionResult{Success: false, Error: "could not find checkout button"}
}

// Scroll 按档位随机距离滚动，滚动后按注意力停留。
func (b *PersonaBrowser) Scroll(distance ScrollDistance, direction ScrollDirection) bool {
	if !b.ensureValidPage() {
		return false
	}

	var pixels int
	switch distance {
	case ScrollShort:
		pixels = 200 + b.rng.Intn(201)
	case ScrollLong:
		pixels = 800 + b.rng.Intn(701)
	default:
		pixels = 400 + b.rng.Intn(401)
	}
	if direction == ScrollUp {
		pixels = -pixels
	}

	b.realisticDelay(200*time.Millisecond, 500*time.Millisecond)

	if err := b.run(b.defaultTimeout,
		chromedp.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels), nil),
	); err != nil {
		return false
	}

	b.trackEvent("scroll", map[string]any{
		"distance":  pixels,
		"direction": string(direction),
	})

	b.realisticDelay(500*time.Millisecond, time.Duration(b.traits.AttentionSpan*0.5*float64(time.Second)))
	return true
}

// ScrollIntoView 将元素滚动到可视区域。
func (b *PersonaBrowser) ScrollIntoView(selector string) bool {
	if !b.ensureValidPage() {
		return false
	}
	return b.run(b.defaultTimeout, chromedp.ScrollIntoView(selector, byOption(selector))) == nil
}

// Count 返回匹配 CSS 选择器的元素数量，失败时返回 0。
func (b *PersonaBrowser) Count(selector string) int {
	if !b.ensureValidPage() {
		return 0
	}
	var n int
	expr := fmt.Sprintf("document.querySelectorAll(%q).length", selector)
	if err := b.run(b.defaultTimeout, chromedp.Evaluate(expr, &n)); err != nil {
		return 0
	}
	return n
}

// ClickNth 点击第 n 个（从 0 起）匹配元素。
func (b *PersonaBrowser) ClickNth(selector string, n int) bool {
	if !b.ensureValidPage() {
		return false
	}

	b.realisticDelay(300*time.Millisecond, time.Second)

	expr := fmt.Sprintf(`(() => {
		const nodes = document.querySelectorAll(%q);
		if (nodes.length <= %d) return false;
		nodes[%d].scrollIntoView({block: "center"});
		nodes[%d].click();
		return true;
	})()`, selector, n, n, n)

	var clicked bool
	if err := b.run(b.defaultTimeout, chromedp.Evaluate(expr, &clicked)); err != nil || !clicked {
		b.frustration++
		return false
	}
	b.trackEvent("click", map[string]any{"selector": selector, "index": n})
	return true
}

// TextContent 返回首个匹配元素的文本内容。
func (b *PersonaBrowser) TextContent(selector string) (string, bool) {
	if !b.ensureValidPage() {
		return "", false
	}
	var text string
	if err := b.run(b.defaultTimeout, chromedp.Text(selector, &text, byOption(selector))); err != nil {
		return "", false
	}
	return strings.TrimSpace(text), true
}

// PressEnter 在当前焦点元素上按下回车。
func (b *PersonaBrowser) PressEnter() bool {
	return b.run(b.defaultTimeout, chromedp.KeyEvent(kb.Enter)) == nil
}

// CaptureScreenshot 截图保存到配置目录，失败时返回空串。
func (b *PersonaBrowser) CaptureScreenshot(name string) string {
	if b.config.ScreenshotDir == "" {
		return ""
	}
	var buf []byte
	if err := b.run(b.defaultTimeout, chromedp.CaptureScreenshot(&buf)); err != nil {
		return ""
	}
	path := filepath.Join(b.config.ScreenshotDir, fmt.Sprintf("%s_%d.png", name, time.Now().Unix()))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		b.logger.Warn("failed to save screenshot", zap.String("path", path), zap.Error(err))
		return ""
	}
	return path
}

// Pause 按画像节奏在区间内随机等待。
func (b *PersonaBrowser) Pause(min, max time.Duration) {
	b.realisticDelay(min, max)
}

// realisticDelay 画像节奏模型：耐心系数 clamp(patience/5, 0.5, 1.5) 乘以
// 技术系数 clamp(10/tech, 0.7, 1.3)，在缩放后的区间内均匀取值。
func (b *PersonaBrowser) realisticDelay(min, max time.Duration) {
	factor := b.PacingFactor()
	lo := float64(min) * factor
	hi := float64(max) * factor
	if hi < lo {
		hi = lo
	}
	b.sleep(time.Duration(lo + b.rng.Float64()*(hi-lo)))
}

// PacingFactor 返回画像的综合节奏系数。
func (b *PersonaBrowser) PacingFactor() float64 {
	patienceFactor := clampFloat(float64(b.traits.PatienceLevel)/5, 0.5, 1.5)
	tech := b.traits.TechProficiency
	if tech < 1 {
		tech = 1
	}
	techFactor := clampFloat(10/float64(tech), 0.7, 1.3)
	return patienceFactor * techFactor
}

// TypingSpeed 返回每字符输入耗时：0.1s 基准按技术熟练度与年龄调整。
func (b *PersonaBrowser) TypingSpeed() time.Duration {
	base := 100 * time.Millisecond
	techAdjustment := 1.5 - float64(b.traits.TechProficiency)/10

	ageAdjustment := 1.0
	if b.traits.Age < 25 {
		ageAdjustment = 0.8
	} else if b.traits.Age > 60 {
		ageAdjustment = 1.3
	}
	return time.Duration(float64(base) * techAdjustment * ageAdjustment)
}

// postNavigationBehavior 页面加载后的习惯性动作：加载过慢积累挫败感，
// 随后按注意力短滚几次扫视页面。
func (b *PersonaBrowser) postNavigationBehavior(loadTime time.Duration) {
	if loadTime > time.Duration(11-b.traits.PatienceLevel)*time.Second {
		b.frustration++
	}

	scans := int(b.traits.AttentionSpan / 3)
	if scans < 1 {
		scans = 1
	}
	if scans > 3 {
		scans = 3
	}
	for i := 0; i < scans; i++ {
		b.Scroll(ScrollShort, ScrollDown)
		b.realisticDelay(500*time.Millisecond, 1500*time.Millisecond)
	}
}

// visualScan 模拟视线扫过页面：鼠标在随机位置间移动。
func (b *PersonaBrowser) visualScan() {
	var dims Viewport
	err := b.run(5*time.Second, chromedp.Evaluate(
		`({width: document.documentElement.clientWidth, height: document.documentElement.clientHeight})`,
		&dims,
	))
	if err != nil || dims.Width <= 0 || dims.Height <= 0 {
		return
	}

	points := 2 + int(b.traits.AttentionSpan/2)
	tech := b.traits.TechProficiency
	if tech < 1 {
		tech = 1
	}
	for i := 0; i < points; i++ {
		x := float64(b.rng.Intn(dims.Width))
		y := float64(b.rng.Intn(dims.Height))
		_ = b.run(time.Second, input.DispatchMouseEvent(input.MouseMoved, x, y))
		b.sleep(time.Duration((0.1 + b.rng.Float64()*0.2) * (10 / float64(tech)) * float64(time.Second)))
	}
}

// moveMouseTo 将鼠标移动到元素中心，失败忽略。
func (b *PersonaBrowser) moveMouseTo(selector string) {
	if IsXPath(selector) {
		return
	}
	var box struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	expr := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return {x: -1, y: -1};
		const r = el.getBoundingClientRect();
		return {x: r.x + r.width / 2, y: r.y + r.height / 2};
	})()`, selector)
	if err := b.run(5*time.Second, chromedp.Evaluate(expr, &box)); err != nil || box.X < 0 {
		return
	}
	_ = b.run(time.Second, input.DispatchMouseEvent(input.MouseMoved, box.X, box.Y))
}

// ensureValidPage 探测页面是否仍可响应，必要时重建目标并回到上一 URL。
func (b *PersonaBrowser) ensureValidPage() bool {
	var out int
	if err := b.run(3*time.Second, chromedp.Evaluate("1 + 1", &out)); err == nil {
		return true
	}

	b.logger.Warn("page unresponsive, recreating target", zap.String("url", b.currentURL))
	if err := b.sub.Recreate(); err != nil {
		b.logger.Error("failed to recreate target", zap.Error(err))
		return false
	}
	b.trackEvent("page_recovered", map[string]any{"url": b.currentURL})

	if b.currentURL != "" {
		if _, err := b.navigate(60*time.Second, b.currentURL); err != nil {
			b.logger.Error("failed to restore url after recovery", zap.Error(err))
			return false
		}
	}
	return true
}

func (b *PersonaBrowser) trackEvent(eventType string, data map[string]any) {
	now := time.Now()
	b.events = append(b.events, Event{
		Type:      eventType,
		Timestamp: now,
		SinceLast: now.Sub(b.lastAction),
		Data:      data,
	})
	b.lastAction = now
}

// Selectors 返回当前生效的选择器集合。
func (b *PersonaBrowser) Selectors() SelectorConfig { return b.selectors }

// SiteType 返回识别出的站点技术栈类型。
func (b *PersonaBrowser) SiteType() SiteType { return b.siteType }

// WebsiteType 返回站点类别（如 "ecommerce-fashion"）。
func (b *PersonaBrowser) WebsiteType() string { return b.website }

// FrustrationCount 返回累计的挫败感指标数。
func (b *PersonaBrowser) FrustrationCount() int { return b.frustration }

// CurrentURL 返回最近一次成功导航的 URL。
func (b *PersonaBrowser) CurrentURL() string { return b.currentURL }

// Events 返回执行期间记录的全部行为事件。
func (b *PersonaBrowser) Events() []Event {
	out := make([]Event, len(b.events))
	copy(out, b.events)
	return out
}

// NavigationHistory 返回导航历史。
func (b *PersonaBrowser) NavigationHistory() []NavigationRecord {
	out := make([]NavigationRecord, len(b.navigations))
	copy(out, b.navigations)
	return out
}

// PageLoadTimes 返回每个 URL 的加载耗时。
func (b *PersonaBrowser) PageLoadTimes() map[string]time.Duration {
	out := make(map[string]time.Duration, len(b.loadTimes))
	for url, d := range b.loadTimes {
		out[url] = d
	}
	return out
}

// AccessibilityIssues 返回导航后扫描到的可达性问题。
func (b *PersonaBrowser) AccessibilityIssues() []string {
	out := make([]string, len(b.a11yIssues))
	copy(out, b.a11yIssues)
	return out
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
