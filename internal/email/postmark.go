package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/dukerupert/fusionmeals/internal/grocery"
	"github.com/dukerupert/fusionmeals/internal/model"
)

const defaultAPIURL = "https://api.postmarkapp.com/email"

// ErrNotConfigured is returned when no Postmark server token is set.
var ErrNotConfigured = errors.New("email client not configured: missing server token")

type Client struct {
	serverToken string
	fromEmail   string
	apiURL      string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithAPIURL points the client at a different Postmark-compatible endpoint.
func WithAPIURL(u string) Option {
	return func(cl *Client) {
		cl.apiURL = u
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		apiURL:      defaultAPIURL,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set.
func (c *Client) Configured() bool {
	return c != nil && c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendRecipe mails a recipe as plain text with a preformatted HTML copy.
func (c *Client) SendRecipe(ctx context.Context, to, subject, recipe string) error {
	if strings.TrimSpace(subject) == "" {
		subject = "A recipe from FusionMeals"
	}
	htmlBody := `<pre style="font-family:inherit;white-space:pre-wrap">` + html.EscapeString(recipe) + `</pre>`
	return c.send(ctx, postmarkEmail{
		To:       to,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: recipe,
	})
}

// SendShoppingList mails a categorized grocery list. Placeholder lines for
// empty categories are left out.
func (c *Client) SendShoppingList(ctx context.Context, to string, items []model.GroceryItem) error {
	text, htmlBody := renderShoppingList(items)
	return c.send(ctx, postmarkEmail{
		To:       to,
		Subject:  "Your FusionMeals shopping list",
		HtmlBody: htmlBody,
		TextBody: text,
	})
}

func renderShoppingList(items []model.GroceryItem) (text, htmlBody string) {
	var order []string
	byCategory := make(map[string][]model.GroceryItem)
	for _, it := range items {
		if grocery.IsPlaceholder(it.Name) {
			continue
		}
		if _, ok := byCategory[it.Category]; !ok {
			order = append(order, it.Category)
		}
		byCategory[it.Category] = append(byCategory[it.Category], it)
	}

	var tb, hb strings.Builder
	for _, cat := range order {
		fmt.Fprintf(&tb, "%s\n", cat)
		fmt.Fprintf(&hb, "<h3>%s</h3><ul>", html.EscapeString(cat))
		for _, it := range byCategory[cat] {
			line := it.Name
			if it.Quantity != "" {
				line += " - " + it.Quantity
			}
			fmt.Fprintf(&tb, "  - %s\n", line)
			fmt.Fprintf(&hb, "<li>%s</li>", html.EscapeString(line))
		}
		tb.WriteString("\n")
		hb.WriteString("</ul>")
	}
	return strings.TrimRight(tb.String(), "\n"), hb.String()
}

func (c *Client) send(ctx context.Context, payload postmarkEmail) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	payload.From = c.fromEmail

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
