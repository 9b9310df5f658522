package generator

import (
	"fmt"
	"strings"
)

// Prompt 表示发送给 LLM 的消息集合：一条 system，加一条 user（可附带图片）。
type Prompt struct {
	System string
	User   string
	Image  string
}

const enhancerSystem = `You are a prompt enhancer and design brief generator. Given a user's request and optional screenshot URL, return a concise, actionable enhanced prompt and a short design brief that a website generator can consume.

OUTPUT FORMAT RULES:
- Return only JSON with the following keys: enhanced_prompt (string), images (array of suggested image URLs or empty), videos (array of suggested video URLs or empty), notes (short string).
- Do NOT include chain-of-thought, internal reasoning, or any extra text outside the JSON.
- Keep values brief but specific: list hero elements, sections to include, suggested image placements, color palette (3 colors), fonts, and key animations/interactions.`

const documentRules = `You are Llamable, an assistant that returns a single, self-contained HTML document (no explanations, no markdown, no surrounding text).

IMPORTANT OUTPUT RULES:
- Return EXACTLY one complete HTML document starting with <!DOCTYPE html> and ending with </html>.
- Put all CSS inside a single <style> tag in the <head> and all JavaScript inside a single <script> tag just before </body>.
- Do NOT output TypeScript, JSX, React components, or any framework-specific code.
- Do NOT include any explanatory text or code fences; the response must be raw HTML only.`

const siteRules = `
RENDERING / UX REQUIREMENTS:
- Mobile-first responsive design; it must render cleanly inside an iframe.
- Use semantic HTML and accessible attributes (aria-*, alt text on images, labels for forms).
- Include a top navigation bar with 3-5 anchor links that map to section IDs on the page.
- External links must include target="_blank" rel="noopener noreferrer".

PRACTICAL CONSTRAINTS:
- Prefer clarity and a usable, visually-pleasing design over extremely large repetitive sites.
- If an image URL is provided by the user, include it in the page (use the provided URL as the image src).
- Keep markup pragmatic and reasonably sized (avoid thousands of near-duplicate sections).

WHEN THE USER ASKS FOR A "CLONE" OR SUPPLIES A SCREENSHOT:
- Produce an HTML page that approximates the visual layout, colors, typography, and spacing.
- Do not invent or output additional assets; reference the provided image URL.

IMAGE REQUIREMENTS:
- For ALL images, use Picsum URLs with seeds for consistency: https://picsum.photos/seed/[unique-seed]/[width]/[height]
- Use different seeds for different images (e.g., hero1, gallery1, team1, feature1).
- Wrap images in <figure> tags with alt text and figcaptions.
- Add onerror="this.src='https://placehold.co/[width]x[height]?text=Image+not+found'; this.onerror=null;", loading="lazy" and decoding="async".`

const componentRules = `
COMPONENT REQUIREMENTS:
- The user wants a single UI component or small widget, not a full website.
- Center the component on an otherwise plain page; keep surrounding chrome minimal.
- Use semantic HTML and accessible attributes; it must render cleanly inside an iframe.`

const (
	defaultImagePrompt  = "Create a website from this screenshot or description"
	defaultSourcePrompt = "Create a single self-contained HTML document that implements the requested UI; return only the HTML."
	htmlResponseSuffix  = "Respond with a single self-contained HTML document. Do not include any explanatory text."
	structureCorrection = "Your previous answer was incomplete. The response must include complete HTML structure: <!DOCTYPE html>, <html>, <head> and <body>."
)

// BuildEnhancerPrompt 生成第一阶段（提示词增强）的提示词。
func BuildEnhancerPrompt(req Request) Prompt {
	user := strings.TrimSpace(req.Prompt)
	switch {
	case user == "" && req.HasImage():
		user = defaultImagePrompt
	case user == "":
		user = "Create a website from this description."
	}
	return Prompt{
		System: enhancerSystem,
		User:   user + "\n\nReturn the enhanced prompt JSON as specified.",
		Image:  req.Image,
	}
}

// BuildHTMLPrompt 生成第二阶段（HTML 生成）的提示词。source 是增强后的提示词或原始提示词；
// corrective 为 true 时追加结构补全要求。
func BuildHTMLPrompt(req Request, source string, isSite, corrective bool) Prompt {
	var sys strings.Builder
	sys.WriteString(documentRules)
	if isSite {
		sys.WriteString("\n")
		sys.WriteString(siteRules)
	} else {
		sys.WriteString("\n")
		sys.WriteString(componentRules)
	}

	source = strings.TrimSpace(source)
	if source == "" {
		source = defaultSourcePrompt
	}

	var user strings.Builder
	if prior := strings.TrimSpace(req.PriorArtifact); prior != "" {
		user.WriteString("Current document:\n")
		user.WriteString(prior)
		user.WriteString("\n\n")
		change := strings.TrimSpace(req.Prompt)
		if change == "" {
			change = source
		}
		user.WriteString(fmt.Sprintf("Requested change: %s\n", change))
		if source != change {
			user.WriteString(fmt.Sprintf("Design notes: %s\n", source))
		}
		user.WriteString("Apply the change and return the full updated document, keeping everything else intact.")
	} else {
		user.WriteString(source)
	}
	if corrective {
		user.WriteString("\n\n")
		user.WriteString(structureCorrection)
	}
	user.WriteString("\n\n")
	user.WriteString(htmlResponseSuffix)

	return Prompt{
		System: sys.String(),
		User:   user.String(),
		Image:  req.Image,
	}
}
