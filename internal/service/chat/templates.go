package chat

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ashwinyue/shop-assistant/internal/service/catalog"
)

// Render 将工具结果渲染为回复文本
// 每种结果形态对应一个模板，失败时直接返回工具给出的原因
func Render(res *catalog.Result) string {
	if !res.Success {
		if reason := res.Reason(); reason != "" {
			return reason
		}
		return "Sorry, I couldn't complete that request."
	}

	switch res.Kind {
	case catalog.KindProductList:
		return renderProducts(res.ProductList)
	case catalog.KindProductDetail:
		return renderProductDetail(res.ProductDetail)
	case catalog.KindCategoryList:
		return renderCategories(res.CategoryList)
	case catalog.KindCartUpdate:
		return renderCartUpdate(res.Message, res.CartUpdate)
	case catalog.KindCart:
		return renderCart(res.Cart)
	case catalog.KindOrderStatus:
		return renderOrderStatus(res.OrderStatus)
	case catalog.KindOrderList:
		return renderOrders(res.OrderList)
	case catalog.KindOrderCreated:
		return renderOrderCreated(res.Message, res.OrderCreated)
	case catalog.KindTracking:
		return renderTracking(res.Tracking)
	case catalog.KindFailure:
		return res.Reason()
	}
	return res.Message
}

func renderProducts(list *catalog.ProductList) string {
	if len(list.Products) == 0 {
		return "I couldn't find any products matching your search. Try a different keyword or ask me to list our categories."
	}

	var b strings.Builder
	b.WriteString("Here are the products I found:\n\n")
	for i, p := range list.Products {
		fmt.Fprintf(&b, "%d. **%s** - %s (⭐ %.1f)\n", i+1, p.Name, FormatINR(p.Price), p.Rating)
		if p.Description != "" {
			fmt.Fprintf(&b, "   %s\n", p.Description)
		}
	}
	b.WriteString("\nWould you like to add any of these to your cart?")
	return b.String()
}

func renderProductDetail(p *catalog.ProductDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s** (%s)\n", p.Name, p.ID)
	fmt.Fprintf(&b, "Price: %s\n", FormatINR(p.Price))
	fmt.Fprintf(&b, "Rating: ⭐ %.1f\n", p.Rating)
	if p.Material != "" {
		fmt.Fprintf(&b, "Material: %s\n", p.Material)
	}
	if p.InStock {
		fmt.Fprintf(&b, "Availability: In stock (%d left)\n", p.Stock)
	} else {
		b.WriteString("Availability: Out of stock\n")
	}
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s", p.Description)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCategories(list *catalog.CategoryList) string {
	if len(list.Categories) == 0 {
		return "We don't have any categories yet."
	}
	var b strings.Builder
	b.WriteString("We have these categories:\n\n")
	for _, c := range list.Categories {
		fmt.Fprintf(&b, "- **%s** (%s)\n", c.DisplayName, plural(int(c.ProductCount), "product"))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCartUpdate(msg string, u *catalog.CartUpdate) string {
	if u == nil || u.Removed > 0 || (u.ProductName == "" && u.CartTotalItems == 0) {
		return msg
	}
	return fmt.Sprintf("%s. Your cart now has %s.", msg, plural(int(u.CartTotalItems), "item"))
}

func renderCart(c *catalog.CartView) string {
	if len(c.CartItems) == 0 {
		return "Your cart is empty."
	}
	var b strings.Builder
	b.WriteString("Here's your cart:\n\n")
	for i, it := range c.CartItems {
		fmt.Fprintf(&b, "%d. %s x %d - %s\n", i+1, it.ProductName, it.Quantity, FormatINR(it.Total))
	}
	fmt.Fprintf(&b, "\n**Total: %s** (%s)", FormatINR(c.TotalPrice), plural(c.TotalItems, "item"))
	return b.String()
}

func renderOrderStatus(o *catalog.OrderDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Order **%s** is **%s**.\n", o.OrderID, o.Status)
	fmt.Fprintf(&b, "Placed on: %s\n", o.OrderDate)
	fmt.Fprintf(&b, "Total: %s\n", FormatINR(o.TotalAmount))
	fmt.Fprintf(&b, "Tracking ID: %s\n", o.TrackingID)
	fmt.Fprintf(&b, "Estimated delivery: %s", o.EstimatedDelivery)
	if len(o.Items) > 0 {
		b.WriteString("\n\nItems:")
		for _, it := range o.Items {
			fmt.Fprintf(&b, "\n- %s x %d", it.ProductName, it.Quantity)
		}
	}
	return b.String()
}

func renderOrders(list *catalog.OrderList) string {
	if len(list.Orders) == 0 {
		return "You haven't placed any orders yet."
	}
	var b strings.Builder
	b.WriteString("Your orders:\n\n")
	for i, o := range list.Orders {
		date := o.OrderDate
		if len(date) >= 10 {
			date = date[:10]
		}
		fmt.Fprintf(&b, "%d. **%s** - %s - %s (%s, %s)\n",
			i+1, o.OrderID, o.Status, FormatINR(o.TotalPrice), plural(o.ItemsCount, "item"), date)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderOrderCreated(msg string, o *catalog.OrderCreated) string {
	var b strings.Builder
	b.WriteString(msg)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Order ID: **%s**\n", o.OrderID)
	fmt.Fprintf(&b, "Tracking ID: %s\n", o.TrackingID)
	fmt.Fprintf(&b, "Total: %s\n", FormatINR(o.TotalAmount))
	fmt.Fprintf(&b, "Payment: %s\n", o.PaymentMethod)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Estimated delivery: %s", o.EstimatedDelivery)
	return b.String()
}

func renderTracking(t *catalog.Tracking) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Tracking for order **%s** (%s)\n", t.OrderID, t.TrackingID)
	fmt.Fprintf(&b, "Current status: %s\n\n", t.CurrentStatus)
	for _, u := range t.TrackingUpdates {
		fmt.Fprintf(&b, "✅ %s - %s - %s\n", u.Status, u.Date, u.Location)
	}
	fmt.Fprintf(&b, "\nEstimated delivery: %s", t.EstimatedDelivery)
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

// FormatINR 按印度计数习惯分组，如 ₹1,23,456
func FormatINR(amount float64) string {
	neg := amount < 0
	amount = math.Abs(amount)
	whole := int64(amount)
	paise := int64(math.Round((amount - float64(whole)) * 100))
	if paise == 100 {
		whole++
		paise = 0
	}

	digits := strconv.FormatInt(whole, 10)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		digits = strings.Join(groups, ",") + "," + tail
	}

	out := "₹" + digits
	if paise > 0 {
		out += fmt.Sprintf(".%02d", paise)
	}
	if neg {
		out = "-" + out
	}
	return out
}
