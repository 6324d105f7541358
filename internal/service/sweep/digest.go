package sweep

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"

	"github.com/KasumiMercury/voltahome/internal/domain"
)

// DigestItem is one line of the digest email.
type DigestItem struct {
	Name             string
	ItemType         string
	DaysSinceService int
	PercentUsed      int
}

// Digest is the per-owner email content before rendering.
type Digest struct {
	To           string
	Replace      []DigestItem
	Warning      []DigestItem
	DashboardURL string
}

// Subject prioritizes replace items when there are any.
func (d Digest) Subject() string {
	if len(d.Replace) > 0 {
		return fmt.Sprintf("🔴 VoltaHome Alert: %d device(s) need immediate attention", len(d.Replace))
	}
	return fmt.Sprintf("⚠️ VoltaHome: %d device(s) may need attention soon", len(d.Warning))
}

func newDigest(to, dashboardURL string, items []candidate) Digest {
	d := Digest{To: to, DashboardURL: dashboardURL}
	for _, c := range items {
		line := DigestItem{
			Name:             c.item.Name,
			ItemType:         c.item.ItemType,
			DaysSinceService: c.result.ElapsedDays,
			PercentUsed:      c.result.PercentUsed,
		}
		switch c.result.Status {
		case domain.StatusReplace:
			d.Replace = append(d.Replace, line)
		case domain.StatusWarning:
			d.Warning = append(d.Warning, line)
		}
	}

	byUsage := func(list []DigestItem) func(i, j int) bool {
		return func(i, j int) bool {
			if list[i].PercentUsed != list[j].PercentUsed {
				return list[i].PercentUsed > list[j].PercentUsed
			}
			return list[i].Name < list[j].Name
		}
	}
	sort.SliceStable(d.Replace, byUsage(d.Replace))
	sort.SliceStable(d.Warning, byUsage(d.Warning))

	return d
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>VoltaHome Maintenance Alert</title>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { text-align: center; margin-bottom: 30px; }
.logo { font-size: 24px; font-weight: bold; color: #4F46E5; }
.alert-red { background: #FEF2F2; border: 1px solid #FCA5A5; border-radius: 8px; padding: 15px; margin: 15px 0; }
.alert-yellow { background: #FFFBEB; border: 1px solid #FCD34D; border-radius: 8px; padding: 15px; margin: 15px 0; }
.device { margin: 10px 0; padding: 10px; background: white; border-radius: 6px; }
.device-name { font-weight: bold; }
.device-info { font-size: 14px; color: #666; }
.cta { text-align: center; margin: 30px 0; }
.button { background: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; }
.footer { text-align: center; color: #666; font-size: 12px; margin-top: 30px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<div class="logo">⚡ VoltaHome</div>
<h2>Maintenance Status Alert</h2>
</div>
{{- if .Replace}}
<div class="alert-red">
<h3>🔴 Immediate Attention Required</h3>
<p>These items need service or replacement now:</p>
{{- range .Replace}}
<div class="device">
<div class="device-name">{{.Name}}</div>
<div class="device-info">{{.ItemType}} • {{.DaysSinceService}} days since last service • {{.PercentUsed}}% used</div>
</div>
{{- end}}
</div>
{{- end}}
{{- if .Warning}}
<div class="alert-yellow">
<h3>⚠️ Check Soon</h3>
<p>These items may need attention in the near future:</p>
{{- range .Warning}}
<div class="device">
<div class="device-name">{{.Name}}</div>
<div class="device-info">{{.ItemType}} • {{.DaysSinceService}} days since last service • {{.PercentUsed}}% used</div>
</div>
{{- end}}
</div>
{{- end}}
<div class="cta">
<a href="{{.DashboardURL}}" class="button">Open VoltaHome Dashboard</a>
</div>
<div class="footer">
<p>Stay powered and safe with VoltaHome</p>
<p>You're receiving this because you have items tracked in VoltaHome.</p>
</div>
</div>
</body>
</html>
`))

// Render produces the mail message for the digest.
func (d Digest) Render() (domain.Message, error) {
	var html bytes.Buffer
	if err := digestTemplate.Execute(&html, d); err != nil {
		return domain.Message{}, fmt.Errorf("render digest: %w", err)
	}

	return domain.Message{
		To:      d.To,
		Subject: d.Subject(),
		HTML:    html.String(),
		Text:    d.text(),
	}, nil
}

func (d Digest) text() string {
	var b strings.Builder
	writeSection := func(title string, items []DigestItem) {
		if len(items) == 0 {
			return
		}
		b.WriteString(title)
		b.WriteString("\n")
		for _, item := range items {
			fmt.Fprintf(&b, "- %s (%s): %d days since last service, %d%% used\n",
				item.Name, item.ItemType, item.DaysSinceService, item.PercentUsed)
		}
		b.WriteString("\n")
	}
	writeSection("Immediate attention required:", d.Replace)
	writeSection("Check soon:", d.Warning)
	b.WriteString("Open your dashboard: ")
	b.WriteString(d.DashboardURL)
	b.WriteString("\n")
	return b.String()
}
