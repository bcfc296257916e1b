package templates

import (
	"fmt"

	"component-generator/internal/domain"
)

type palette struct {
	Background string
	Sidebar    string
	Text       string
	Accent     string
	Card       string
	Icon       string
}

var (
	darkPalette = palette{
		Background: "#0f172a",
		Sidebar:    "#1e293b",
		Text:       "#f8fafc",
		Accent:     "#3b82f6",
		Card:       "#334155",
		Icon:       "#94a3b8",
	}
	lightPalette = palette{
		Background: "#f8fafc",
		Sidebar:    "#f1f5f9",
		Text:       "#0f172a",
		Accent:     "#3b82f6",
		Card:       "#e2e8f0",
		Icon:       "#64748b",
	}
)

// uiKit captures the styling differences between plain inline styles and
// the shadcn/ui look.
type uiKit struct {
	Shadcn       bool
	Radius       string
	Font         string
	ButtonWeight string
}

var (
	plainKit  = uiKit{Radius: "0.5rem", Font: "Arial, sans-serif", ButtonWeight: "400"}
	shadcnKit = uiKit{
		Shadcn:       true,
		Radius:       "0.75rem",
		Font:         "'Inter', -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif",
		ButtonWeight: "500",
	}
)

type navItem struct{ Icon, Label string }

type stat struct {
	Label, Value, Change string
	Positive             bool
}

type dashboardData struct {
	P      palette
	Kit    uiKit
	Nav    []navItem
	Recent []string
	Stats  []stat
}

func (d dashboardData) NavLabels() []string {
	out := make([]string, 0, len(d.Nav))
	for _, n := range d.Nav {
		out = append(out, n.Label)
	}
	return out
}

var (
	dashboardNav = []navItem{
		{Icon: "📊", Label: "Overview"},
		{Icon: "👥", Label: "Users"},
		{Icon: "💰", Label: "Revenue"},
		{Icon: "📈", Label: "Analytics"},
		{Icon: "⚙️", Label: "Settings"},
	}
	dashboardRecent = []string{"Login Button", "Contact Form", "Image Gallery"}
	dashboardStats  = []stat{
		{Label: "Users", Value: "1,248", Change: "↑ 12% this month", Positive: true},
		{Label: "Revenue", Value: "$48.5k", Change: "↑ 8% this month", Positive: true},
		{Label: "Traffic", Value: "12.4k", Change: "↓ 3% this month", Positive: false},
	}
)

// Dashboard selects the dashboard variant from the prompt: sidebar or
// horizontal layout, dark or light palette, plain or shadcn styling.
func Dashboard(p domain.PromptContext) domain.ComponentRecord {
	data := dashboardData{
		P:      lightPalette,
		Kit:    plainKit,
		Nav:    dashboardNav,
		Recent: dashboardRecent,
		Stats:  dashboardStats,
	}
	theme := "light"
	if p.WantsDarkTheme() {
		data.P = darkPalette
		theme = "dark"
	}
	if p.WantsShadcn() {
		data.Kit = shadcnKit
	}

	if p.WantsVerticalLayout() {
		return domain.ComponentRecord{
			VisualDescription: fmt.Sprintf("A vertical sidebar dashboard with %s theme: %s", theme, p.RawPrompt),
			PreviewHTML:       render(verticalPreview, data),
			ComponentCode:     render(verticalCode, data),
		}
	}
	return domain.ComponentRecord{
		VisualDescription: fmt.Sprintf("A horizontal dashboard with stats cards and components list, %s theme: %s", theme, p.RawPrompt),
		PreviewHTML:       render(horizontalPreview, data),
		ComponentCode:     render(horizontalCode, data),
	}
}

var verticalPreview = mustParse("vertical_preview", `<div style="display: flex; width: 100%; height: 100vh; font-family: [[.Kit.Font]]; background-color: [[.P.Background]]; color: [[.P.Text]];">
  <div style="width: 280px; background-color: [[.P.Sidebar]]; padding: 24px 16px; display: flex; flex-direction: column; border-right: 1px solid [[.P.Card]];">
    <div style="font-size: 24px; font-weight: bold; margin-bottom: 32px; padding-left: 12px;">Dashboard</div>
    <nav style="display: flex; flex-direction: column; gap: 8px; margin-bottom: 32px;">
[[- range $i, $item := .Nav]]
      <a href="#" style="display: flex; align-items: center; gap: 12px; padding: 10px 12px; [[if eq $i 0]]background-color: [[$.P.Accent]]; color: white;[[else]]color: [[$.P.Text]];[[end]] text-decoration: none; border-radius: [[$.Kit.Radius]]; font-weight: [[$.Kit.ButtonWeight]];">
        <span style="width: 20px; height: 20px; display: inline-flex; align-items: center; justify-content: center;">[[$item.Icon]]</span>
        <span>[[$item.Label]]</span>
      </a>
[[- end]]
    </nav>
    <div style="margin-top: auto; padding-top: 24px; border-top: 1px solid [[.P.Card]];">
      <div style="font-size: 14px; font-weight: bold; margin-bottom: 12px; padding-left: 12px; color: [[.P.Icon]];">RECENT</div>
      <div style="display: flex; flex-direction: column; gap: 8px;">
[[- range .Recent]]
        <span style="padding: 8px 12px; color: [[$.P.Text]]; font-size: 14px;">[[.]]</span>
[[- end]]
      </div>
    </div>
  </div>
  <div style="flex: 1; padding: 24px; overflow-y: auto;">
    <div style="display: flex; justify-content: space-between; align-items: center; margin-bottom: 24px;">
      <h1 style="font-size: 24px; font-weight: bold;">Overview</h1>
      <div style="display: flex; gap: 12px;">
        <button style="background-color: [[.P.Accent]]; color: white; border: none; padding: 8px 16px; border-radius: [[.Kit.Radius]]; cursor: pointer;">New</button>
        <button style="background-color: transparent; border: 1px solid [[.P.Card]]; color: [[.P.Text]]; padding: 8px 16px; border-radius: [[.Kit.Radius]]; cursor: pointer;">Filter</button>
      </div>
    </div>
    <div style="display: grid; grid-template-columns: repeat(auto-fill, minmax(240px, 1fr)); gap: 24px; margin-bottom: 24px;">
[[- range .Stats]]
      <div style="background-color: [[$.P.Card]]; border-radius: [[$.Kit.Radius]]; padding: 20px;">
        <div style="font-size: 14px; color: [[$.P.Icon]];">[[.Label]]</div>
        <div style="font-size: 28px; font-weight: bold; margin-top: 8px;">[[.Value]]</div>
        <div style="font-size: 12px; color: [[if .Positive]]#4ade80[[else]]#ef4444[[end]]; margin-top: 8px;">[[.Change]]</div>
      </div>
[[- end]]
    </div>
  </div>
</div>`)

const dashboardStyles = `[[define "styles"]]
  const containerStyle = {
    display: 'flex',
    width: '100%',
    height: '100vh',
    fontFamily: "[[.Kit.Font]]",
    backgroundColor: '[[.P.Background]]',
    color: '[[.P.Text]]'
  };

  const sidebarStyle = {
    width: '280px',
    backgroundColor: '[[.P.Sidebar]]',
    padding: '24px 16px',
    display: 'flex',
    flexDirection: 'column',
    borderRight: '1px solid [[.P.Card]]'
  };

  const titleStyle = {
    fontSize: '24px',
    fontWeight: 'bold',
    marginBottom: '32px',
    paddingLeft: '12px'
  };

  const navStyle = {
    display: 'flex',
    flexDirection: 'column',
    gap: '8px',
    marginBottom: '32px'
  };

  const navItemStyle = {
    display: 'flex',
    alignItems: 'center',
    gap: '12px',
    padding: '10px 12px',
    color: '[[.P.Text]]',
    textDecoration: 'none',
    borderRadius: '[[.Kit.Radius]]',
    fontWeight: '[[.Kit.ButtonWeight]]'
  };

  const activeNavItemStyle = {
    backgroundColor: '[[.P.Accent]]',
    color: 'white'
  };

  const iconStyle = {
    width: '20px',
    height: '20px',
    display: 'inline-flex',
    alignItems: 'center',
    justifyContent: 'center'
  };

  const recentSectionStyle = {
    marginTop: 'auto',
    paddingTop: '24px',
    borderTop: '1px solid [[.P.Card]]'
  };

  const recentHeaderStyle = {
    fontSize: '14px',
    fontWeight: 'bold',
    marginBottom: '12px',
    paddingLeft: '12px',
    color: '[[.P.Icon]]'
  };

  const recentItemStyle = {
    padding: '8px 12px',
    color: '[[.P.Text]]',
    fontSize: '14px'
  };

  const mainContentStyle = {
    flex: 1,
    padding: '24px',
    overflowY: 'auto'
  };

  const headerStyle = {
    display: 'flex',
    justifyContent: 'space-between',
    alignItems: 'center',
    marginBottom: '24px'
  };

  const primaryButtonStyle = {
    backgroundColor: '[[.P.Accent]]',
    color: 'white',
    border: 'none',
    padding: '8px 16px',
    borderRadius: '[[.Kit.Radius]]',
    cursor: 'pointer'
  };

  const secondaryButtonStyle = {
    backgroundColor: 'transparent',
    border: '1px solid [[.P.Card]]',
    color: '[[.P.Text]]',
    padding: '8px 16px',
    borderRadius: '[[.Kit.Radius]]',
    cursor: 'pointer'
  };

  const cardsContainerStyle = {
    display: 'grid',
    gridTemplateColumns: 'repeat(auto-fill, minmax(240px, 1fr))',
    gap: '24px',
    marginBottom: '24px'
  };

  const cardStyle = {
    backgroundColor: '[[.P.Card]]',
    borderRadius: '[[.Kit.Radius]]',
    padding: '20px'
  };

  const cardLabelStyle = {
    fontSize: '14px',
    color: '[[.P.Icon]]'
  };

  const cardValueStyle = {
    fontSize: '28px',
    fontWeight: 'bold',
    marginTop: '8px'
  };

  const changeStyle = (positive) => ({
    fontSize: '12px',
    color: positive ? '#4ade80' : '#ef4444',
    marginTop: '8px'
  });
[[end]]`

const shadcnImports = `[[define "imports"]][[if .Kit.Shadcn]]
import {
  Card,
  CardContent,
  CardDescription,
  CardHeader,
  CardTitle,
} from "./ui/card";
import { Button } from "./ui/button";
import { BarChart, Clock, Home, Settings, Users } from "lucide-react";[[end]][[end]]`

var verticalCode = mustParse("vertical_code", dashboardStyles+shadcnImports+`import React from 'react';[[template "imports" .]]

const Dashboard = () => {[[template "styles" .]]
  const navItems = [
[[- range .Nav]]
    { icon: '[[.Icon]]', label: '[[.Label]]' },
[[- end]]
  ];

  const recentItems = [[jslist .Recent]];

  const stats = [
[[- range .Stats]]
    { label: '[[.Label]]', value: '[[.Value]]', change: '[[.Change]]', positive: [[.Positive]] },
[[- end]]
  ];

  return (
    <div style={containerStyle}>
      <div style={sidebarStyle}>
        <div style={titleStyle}>Dashboard</div>
        <nav style={navStyle}>
          {navItems.map((item, index) => (
            <a
              key={item.label}
              href="#"
              style={index === 0 ? { ...navItemStyle, ...activeNavItemStyle } : navItemStyle}
            >
              <span style={iconStyle}>{item.icon}</span>
              <span>{item.label}</span>
            </a>
          ))}
        </nav>
        <div style={recentSectionStyle}>
          <div style={recentHeaderStyle}>RECENT</div>
          {recentItems.map((name) => (
            <div key={name} style={recentItemStyle}>{name}</div>
          ))}
        </div>
      </div>
      <div style={mainContentStyle}>
        <div style={headerStyle}>
          <h1>Overview</h1>
          <div style={{ display: 'flex', gap: '12px' }}>
            <button style={primaryButtonStyle}>New</button>
            <button style={secondaryButtonStyle}>Filter</button>
          </div>
        </div>
        <div style={cardsContainerStyle}>
          {stats.map((card) => (
            <div key={card.label} style={cardStyle}>
              <div style={cardLabelStyle}>{card.label}</div>
              <div style={cardValueStyle}>{card.value}</div>
              <div style={changeStyle(card.positive)}>{card.change}</div>
            </div>
          ))}
        </div>
      </div>
    </div>
  );
};

export default Dashboard;
`)

var horizontalPreview = mustParse("horizontal_preview", `<div style="background-color: [[.P.Sidebar]]; border-radius: [[.Kit.Radius]]; padding: 20px; color: [[.P.Text]]; width: 100%; font-family: [[.Kit.Font]];">
  <div style="display: flex; justify-content: space-between; align-items: center; margin-bottom: 20px;">
    <div style="font-size: 24px; font-weight: bold;">Dashboard</div>
    <div style="display: flex; gap: 10px;">
      <button style="background-color: [[.P.Accent]]; border: none; color: white; padding: 8px 16px; border-radius: [[.Kit.Radius]]; cursor: pointer;">New</button>
      <button style="background-color: transparent; border: 1px solid [[.P.Icon]]; color: [[.P.Text]]; padding: 8px 16px; border-radius: [[.Kit.Radius]]; cursor: pointer;">Filter</button>
    </div>
  </div>
  <nav style="display: flex; gap: 8px; margin-bottom: 20px;">
[[- range $i, $item := .Nav]]
    <a href="#" style="padding: 8px 12px; border-radius: [[$.Kit.Radius]]; text-decoration: none; [[if eq $i 0]]background-color: [[$.P.Accent]]; color: white;[[else]]color: [[$.P.Text]];[[end]]">[[$item.Label]]</a>
[[- end]]
  </nav>
  <div style="display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 16px; margin-bottom: 24px;">
[[- range .Stats]]
    <div style="background-color: [[$.P.Card]]; border-radius: [[$.Kit.Radius]]; padding: 16px;">
      <div style="font-size: 14px; color: [[$.P.Icon]];">[[.Label]]</div>
      <div style="font-size: 28px; font-weight: bold; margin-top: 8px;">[[.Value]]</div>
      <div style="font-size: 12px; color: [[if .Positive]]#4ade80[[else]]#ef4444[[end]]; margin-top: 8px;">[[.Change]]</div>
    </div>
[[- end]]
  </div>
  <div style="background-color: [[.P.Card]]; border-radius: [[.Kit.Radius]]; padding: 16px;">
    <div style="font-size: 16px; font-weight: bold; margin-bottom: 16px;">Recent components</div>
    <div style="display: flex; flex-direction: column; gap: 8px;">
[[- range .Recent]]
      <a href="#" style="display: flex; justify-content: space-between; padding: 12px; background-color: [[$.P.Background]]; border-radius: 4px; text-decoration: none; color: [[$.P.Text]];">
        <span>[[.]]</span>
        <span style="color: [[$.P.Icon]];">→</span>
      </a>
[[- end]]
    </div>
  </div>
</div>`)

var horizontalCode = mustParse("horizontal_code", shadcnImports+`import React from 'react';[[template "imports" .]]

const Dashboard = () => {
  const dashboardStyle = {
    backgroundColor: '[[.P.Sidebar]]',
    borderRadius: '[[.Kit.Radius]]',
    padding: '20px',
    color: '[[.P.Text]]',
    width: '100%',
    fontFamily: "[[.Kit.Font]]"
  };

  const headerStyle = {
    display: 'flex',
    justifyContent: 'space-between',
    alignItems: 'center',
    marginBottom: '20px'
  };

  const navItemStyle = (active) => ({
    padding: '8px 12px',
    borderRadius: '[[.Kit.Radius]]',
    textDecoration: 'none',
    backgroundColor: active ? '[[.P.Accent]]' : 'transparent',
    color: active ? 'white' : '[[.P.Text]]'
  });

  const buttonStyle = (primary) => ({
    backgroundColor: primary ? '[[.P.Accent]]' : 'transparent',
    border: primary ? 'none' : '1px solid [[.P.Icon]]',
    color: primary ? 'white' : '[[.P.Text]]',
    padding: '8px 16px',
    borderRadius: '[[.Kit.Radius]]',
    cursor: 'pointer'
  });

  const cardStyle = {
    backgroundColor: '[[.P.Card]]',
    borderRadius: '[[.Kit.Radius]]',
    padding: '16px'
  };

  const itemStyle = {
    display: 'flex',
    justifyContent: 'space-between',
    padding: '12px',
    backgroundColor: '[[.P.Background]]',
    borderRadius: '4px',
    textDecoration: 'none',
    color: '[[.P.Text]]'
  };

  const navItems = [[jslist .NavLabels]];

  const cardData = [
[[- range .Stats]]
    { label: '[[.Label]]', value: '[[.Value]]', change: '[[.Change]]', positive: [[.Positive]] },
[[- end]]
  ];

  const recentComponents = [[jslist .Recent]];

  return (
    <div style={dashboardStyle}>
      <div style={headerStyle}>
        <div style={{ fontSize: '24px', fontWeight: 'bold' }}>Dashboard</div>
        <div style={{ display: 'flex', gap: '10px' }}>
          <button style={buttonStyle(true)}>New</button>
          <button style={buttonStyle(false)}>Filter</button>
        </div>
      </div>
      <nav style={{ display: 'flex', gap: '8px', marginBottom: '20px' }}>
        {navItems.map((label, index) => (
          <a key={label} href="#" style={navItemStyle(index === 0)}>{label}</a>
        ))}
      </nav>
      <div style={{ display: 'grid', gridTemplateColumns: 'repeat(auto-fill, minmax(200px, 1fr))', gap: '16px', marginBottom: '24px' }}>
        {cardData.map((card) => (
          <div key={card.label} style={cardStyle}>
            <div style={{ fontSize: '14px', color: '[[.P.Icon]]' }}>{card.label}</div>
            <div style={{ fontSize: '28px', fontWeight: 'bold', marginTop: '8px' }}>{card.value}</div>
            <div style={{ fontSize: '12px', marginTop: '8px', color: card.positive ? '#4ade80' : '#ef4444' }}>{card.change}</div>
          </div>
        ))}
      </div>
      <div style={cardStyle}>
        <div style={{ fontSize: '16px', fontWeight: 'bold', marginBottom: '16px' }}>Recent components</div>
        <div style={{ display: 'flex', flexDirection: 'column', gap: '8px' }}>
          {recentComponents.map((name) => (
            <a key={name} href="#" style={itemStyle}>
              <span>{name}</span>
              <span style={{ color: '[[.P.Icon]]' }}>→</span>
            </a>
          ))}
        </div>
      </div>
    </div>
  );
};

export default Dashboard;
`)
