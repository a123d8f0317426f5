package browser

import (
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// 页面内执行的启发式可达性检查。不是完整的 WCAG 审计，只抓取
// 评估报告关心的高频问题。
const accessibilityScanScript = `(() => {
	const issues = [];

	const images = Array.from(document.querySelectorAll("img"));
	const missingAlt = images.filter(img => !img.hasAttribute("alt")).length;
	if (missingAlt > 0) {
		issues.push(missingAlt + " image(s) missing alt text");
	}

	const inputs = Array.from(document.querySelectorAll("input, select, textarea"))
		.filter(el => el.type !== "hidden" && el.type !== "submit" && el.type !== "button");
	const unlabeled = inputs.filter(el => {
		if (el.getAttribute("aria-label") || el.getAttribute("aria-labelledby")) return false;
		if (el.id && document.querySelector('label[for="' + el.id + '"]')) return false;
		return !el.closest("label");
	}).length;
	if (unlabeled > 0) {
		issues.push(unlabeled + " form field(s) without an associated label");
	}

	const buttons = Array.from(document.querySelectorAll("button, a[role=button]"));
	const unnamed = buttons.filter(el =>
		!el.textContent.trim() && !el.getAttribute("aria-label") && !el.getAttribute("title")
	).length;
	if (unnamed > 0) {
		issues.push(unnamed + " button(s) without an accessible name");
	}

	if (!document.documentElement.getAttribute("lang")) {
		issues.push("page is missing a lang attribute");
	}

	const headings = document.querySelectorAll("h1, h2, h3, h4, h5, h6");
	if (headings.length === 0) {
		issues.push("page has no heading structure");
	}

	return issues;
})()`

// scanAccessibility 在导航成功后采集可达性问题，去重后并入遥测。
func (b *PersonaBrowser) scanAccessibility() {
	var issues []string
	if err := b.run(10*time.Second, chromedp.Evaluate(accessibilityScanScript, &issues)); err != nil {
		b.logger.Debug("accessibility scan failed", zap.Error(err))
		return
	}

	seen := make(map[string]bool, len(b.a11yIssues))
	for _, issue := range b.a11yIssues {
		seen[issue] = true
	}
	for _, issue := range issues {
		if !seen[issue] {
			b.a11yIssues = append(b.a11yIssues, issue)
			seen[issue] = true
		}
	}
}
