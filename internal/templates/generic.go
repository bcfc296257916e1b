package templates

import (
	"html"

	"component-generator/internal/domain"
)

// Generic is the last-resort fallback: an inline pill colored by the accent
// word in the prompt, plus the default card component.
func Generic(p domain.PromptContext) domain.ComponentRecord {
	accent := p.AccentColor()
	return domain.ComponentRecord{
		VisualDescription: "A UI component for: " + p.RawPrompt,
		PreviewHTML: render(genericPreview, struct {
			Accent domain.Accent
			Prompt string
		}{accent, p.RawPrompt}),
		ComponentCode: DefaultCode(p.RawPrompt, p.ComponentName()),
	}
}

// BorderedPreview is the plain bordered box holding the prompt text.
func BorderedPreview(prompt string) string {
	return "<div style='padding: 16px; border: 1px solid #ccc; border-radius: 8px;'>" +
		html.EscapeString(prompt) + "</div>"
}

// DefaultCode renders the generic card component named name.
func DefaultCode(prompt, name string) string {
	if name == "" {
		name = "UIComponent"
	}
	return render(defaultCode, struct{ Name, Prompt string }{name, prompt})
}

// Simplified replaces components that are too large to render.
func Simplified(prompt, name string) string {
	if name == "" {
		name = "Component"
	}
	return render(simplifiedCode, struct{ Name, Prompt string }{name, prompt})
}

var genericPreview = mustParse("generic_preview",
	`<span style="display: inline-block; padding: 12px 24px; background-color: [[.Accent.Background]]; color: [[.Accent.Text]]; border-radius: 8px; font-family: Arial, sans-serif;">This is a [[html .Prompt]]</span>`)

var defaultCode = mustParse("default_code", `import React from 'react';

const [[.Name]] = () => {
  // Styles for the component
  const containerStyle = {
    border: '1px solid #e0e0e0',
    borderRadius: '8px',
    padding: '16px',
    maxWidth: '100%',
    boxShadow: '0 2px 4px rgba(0,0,0,0.1)',
    fontFamily: 'Arial, sans-serif'
  };

  const headerStyle = {
    fontSize: '18px',
    fontWeight: 'bold',
    marginBottom: '8px',
    color: '#333'
  };

  const actionAreaStyle = {
    backgroundColor: '#f5f5f5',
    padding: '12px',
    borderRadius: '4px',
    marginTop: '12px'
  };

  const buttonStyle = {
    backgroundColor: '#4f46e5',
    color: 'white',
    border: 'none',
    padding: '8px 16px',
    borderRadius: '4px',
    cursor: 'pointer',
    transition: 'background-color 0.3s'
  };

  return (
    <div style={containerStyle}>
      <div style={headerStyle}>[[jsx .Prompt]]</div>
      <p>Generated component based on your description</p>
      <div style={actionAreaStyle}>
        <button
          style={buttonStyle}
          onMouseOver={(e) => {
            e.currentTarget.style.backgroundColor = '#3c35b5';
          }}
          onMouseOut={(e) => {
            e.currentTarget.style.backgroundColor = '#4f46e5';
          }}
        >
          Send
        </button>
      </div>
    </div>
  );
};

export default [[.Name]];
`)

var simplifiedCode = mustParse("simplified_code", `import React from 'react';

// Component simplified due to large size
const [[.Name]] = () => {
  // Component based on: [[comment .Prompt]]
  // The original component was too large and has been simplified

  const styles = {
    container: {
      border: '1px solid #e0e0e0',
      borderRadius: '8px',
      padding: '16px',
      maxWidth: '100%',
      boxShadow: '0 2px 4px rgba(0,0,0,0.1)',
      fontFamily: 'Arial, sans-serif'
    },
    header: {
      fontSize: '18px',
      fontWeight: 'bold',
      marginBottom: '8px'
    },
    content: {
      margin: '10px 0'
    }
  };

  return (
    <div style={styles.container}>
      <div style={styles.header}>[[jsx .Prompt]]</div>
      <div style={styles.content}>
        This component has been simplified for better rendering.
        The original code exceeded the recommended size.
      </div>
    </div>
  );
};

export default [[.Name]];
`)
