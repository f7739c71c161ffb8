package notify

import (
	"fmt"
	"html/template"
	"strings"
)

var alertTmpl = template.Must(template.New("alert").Funcs(template.FuncMap{
	"amount": formatAmount,
	"pct":    func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"saving": func(o Opportunity) string { return formatAmount(o.Currency, o.PrevPrice-o.Price) },
}).Parse(`<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .header { background-color: #0066cc; color: white; padding: 20px; text-align: center; }
  .content { padding: 20px; }
  .opportunity {
    background-color: #f0f8ff;
    border-left: 4px solid #0066cc;
    padding: 15px;
    margin: 15px 0;
    border-radius: 5px;
  }
  .price { font-size: 24px; font-weight: bold; color: #00aa00; }
  .old-price { text-decoration: line-through; color: #999; }
  .discount { color: #cc0000; font-weight: bold; }
  .store { font-weight: bold; color: #0066cc; }
  .footer { text-align: center; padding: 20px; color: #666; font-size: 12px; }
  .button {
    display: inline-block;
    padding: 10px 20px;
    background-color: #00aa00;
    color: white;
    text-decoration: none;
    border-radius: 5px;
    margin-top: 10px;
  }
</style>
</head>
<body>
  <div class="header">
    <h1>Price Alert</h1>
  </div>
  <div class="content">
    <p>Good news! We found buying opportunities for the products you are tracking:</p>
{{range .}}    <div class="opportunity">
      <p class="store">{{.Store}}</p>
      <p><strong>{{.ProductName}}</strong></p>
      <p class="price">{{amount .Currency .Price}}</p>
{{if gt .Discount 0.0}}      <p>
        Previous price: <span class="old-price">{{amount .Currency .PrevPrice}}</span><br>
        <span class="discount">Save {{saving .}} ({{pct .Discount}}% OFF)</span>
      </p>
{{end}}      <p><em>{{.Reason}}</em></p>
      <a href="{{.URL}}" class="button">View Product</a>
    </div>
{{end}}    <p style="margin-top: 30px;">
      <strong>Tip:</strong> prices can change quickly; check the store page before buying.
    </p>
  </div>
  <div class="footer">
    <p>This is an automated alert from your price monitor.</p>
    <p>You are receiving this e-mail because you configured alerts for these products.</p>
  </div>
</body>
</html>
`))

func renderHTML(opportunities []Opportunity) (string, error) {
	var b strings.Builder
	if err := alertTmpl.Execute(&b, opportunities); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderText(opportunities []Opportunity) string {
	var b strings.Builder
	b.WriteString("Price Alert\n\n")
	for _, o := range opportunities {
		fmt.Fprintf(&b, "%s: %s\n", o.Store, formatAmount(o.Currency, o.Price))
		fmt.Fprintf(&b, "Product: %s\n", o.ProductName)
		if o.Discount() > 0 {
			fmt.Fprintf(&b, "Previous: %s (%.1f%% off)\n", formatAmount(o.Currency, o.PrevPrice), o.Discount())
		}
		fmt.Fprintf(&b, "Link: %s\n\n", o.URL)
	}
	return b.String()
}
