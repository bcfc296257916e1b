package usecase

import (
	"fmt"
	"strings"

	"component-generator/internal/domain"
)

func buildPromptMessages(p domain.PromptContext) []domain.ChatMessage {
	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: buildSystemPrompt(p)},
		{Role: domain.RoleUser, Content: buildUserPrompt(p)},
	}
}

func buildSystemPrompt(p domain.PromptContext) string {
	return strings.Join([]string{
		fmt.Sprintf("You are a UI component generator for %s.", p.Platform),
		"Return a JSON with visual_description, preview_html, and component_code fields.",
		"Make sure the preview_html has all styles inline and is properly formatted. DO NOT wrap the component in extra divs.",
		"Always return well-formatted, properly indented code with necessary line breaks.",
		"Return complete components with no truncated code and proper JSX closing tags.",
		"When using images, always use full URLs to placeholder images, not relative paths.",
		"Generate components that EXACTLY match the user's description and requirements.",
	}, "\n")
}

func buildUserPrompt(p domain.PromptContext) string {
	return strings.Join([]string{
		fmt.Sprintf("Create a React component based on this description: %q.", p.PlatformLabel()+" component: "+p.RawPrompt),
		"Return a JSON with:",
		"- visual_description: brief description",
		"- preview_html: HTML preview with inline styles (make sure all styles are inline)",
		"- component_code: complete React component code",
		"",
		"IMPORTANT: For the preview_html, ensure all styles are inline and DO NOT wrap the component in additional divs.",
		"The preview_html should ONLY contain the actual component HTML with NO extra container divs.",
		"Ensure the component code is properly formatted with clear indentation and line breaks.",
		"Do NOT put all code in a single line. MAKE SURE all JSX tags are properly closed and all functions have proper return statements.",
	}, "\n")
}
