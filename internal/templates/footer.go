package templates

import "component-generator/internal/domain"

// Footer renders the footer with four social icons and a creator line.
func Footer(p domain.PromptContext) domain.ComponentRecord {
	data := struct{ Networks []SocialNetwork }{SocialNetworks[:defaultIconCount]}
	return domain.ComponentRecord{
		VisualDescription: "A responsive footer containing social media icons and creator information: " + p.RawPrompt,
		PreviewHTML:       render(footerPreview, data),
		ComponentCode:     render(footerCode, data),
	}
}

var footerPreview = mustParse("footer_preview", `<footer style="background-color: #f4f4f4; padding: 20px; text-align: center; width: 100%; margin-top: 20px;">
  <div style="display: flex; gap: 15px; justify-content: center; margin-bottom: 15px;">
[[- range .Networks]]
    <a href="#" style="text-decoration: none;">
      <img src="[[.IconURL]]" alt="[[.Label]]" style="width: 30px; height: 30px; border-radius: 50%;" />
    </a>
[[- end]]
  </div>
  <div style="font-size: 14px; color: #666;">Created by YourName</div>
</footer>`)

var footerCode = mustParse("footer_code", `import React from 'react';

const Footer = () => {
  const footerStyle = {
    backgroundColor: '#f4f4f4',
    padding: '20px',
    textAlign: 'center',
    width: '100%',
    marginTop: '20px'
  };

  const socialContainerStyle = {
    display: 'flex',
    gap: '15px',
    justifyContent: 'center',
    marginBottom: '15px'
  };

  const iconStyle = {
    width: '30px',
    height: '30px',
    borderRadius: '50%'
  };

  const copyrightStyle = {
    fontSize: '14px',
    color: '#666'
  };

  return (
    <footer style={footerStyle}>
      <div style={socialContainerStyle}>
[[- range .Networks]]
        <a href="#" style={{textDecoration: 'none'}}>
          <img
            src="[[.IconURL]]"
            alt="[[.Label]]"
            style={iconStyle}
          />
        </a>
[[- end]]
      </div>
      <div style={copyrightStyle}>Created by YourName</div>
    </footer>
  );
};

export default Footer;
`)
