package seed

import "github.com/ashwinyue/shop-assistant/internal/model"

type categorySeed struct {
	Name        string
	DisplayName string
	Description string
}

type productSeed struct {
	Category string
	Product  model.Product
}

// KnowledgeDoc 写入文档存储的店铺知识
type KnowledgeDoc struct {
	Source  string
	Title   string
	Content string
}

var categories = []categorySeed{
	{"womens_clothing", "Women's Clothing", "Traditional and modern women's wear"},
	{"cosmetics", "Cosmetics", "Natural and organic beauty products"},
	{"candles", "Candles", "Handcrafted aromatic candles"},
	{"soaps", "Soaps", "Handmade natural soaps"},
	{"home_decor", "Home Decor", "Beautiful decorative items for your home"},
}

func product(sku, name, desc string, price float64, stock int, rating float64, material string, tags ...string) model.Product {
	return model.Product{
		SKU:         sku,
		Name:        name,
		Description: desc,
		Price:       price,
		Currency:    "INR",
		Stock:       stock,
		InStock:     stock > 0,
		Rating:      rating,
		Material:    material,
		ImageURL:    "https://placehold.co/600x400?text=" + sku,
		Tags:        tags,
	}
}

var products = []productSeed{
	{"womens_clothing", product("WC001", "Elegant Cotton Kurti", "Beautiful handcrafted cotton kurti with traditional embroidery", 1499, 25, 4.5, "Cotton", "kurti", "cotton", "embroidery", "traditional")},
	{"womens_clothing", product("WC002", "Floral Print Saree", "Gorgeous floral print saree perfect for special occasions", 2999, 15, 4.8, "Silk Blend", "saree", "floral", "silk", "party wear")},
	{"womens_clothing", product("WC003", "Designer Palazzo Set", "Trendy palazzo set with matching dupatta", 1899, 30, 4.3, "Rayon", "palazzo", "modern", "casual")},

	{"cosmetics", product("COS001", "Natural Face Cream", "Organic face cream with natural ingredients for glowing skin", 899, 50, 4.6, "Organic", "face cream", "organic", "natural", "skincare")},
	{"cosmetics", product("COS002", "Herbal Lip Balm", "Moisturizing lip balm with herbal extracts", 299, 100, 4.4, "Herbal", "lip balm", "herbal", "moisturizing")},
	{"cosmetics", product("COS003", "Rose Water Toner", "Pure rose water toner for refreshing skin", 499, 75, 4.7, "Natural", "toner", "rose water", "natural")},

	{"candles", product("CAN001", "Lavender Bliss Candle", "Soothing lavender scented candle for relaxation", 499, 60, 4.8, "Soy Wax", "candle", "lavender", "aromatherapy", "relaxation")},
	{"candles", product("CAN002", "Vanilla Dream Candle", "Sweet vanilla scented candle for cozy evenings", 549, 45, 4.5, "Soy Wax", "candle", "vanilla", "sweet", "cozy")},
	{"candles", product("CAN003", "Sandalwood Serenity Candle", "Traditional sandalwood scented candle", 599, 40, 4.9, "Beeswax", "candle", "sandalwood", "traditional")},

	{"soaps", product("SOAP001", "Handmade Soap Set", "Set of 3 handmade natural soaps with different fragrances", 599, 80, 4.6, "Natural", "soap", "handmade", "natural", "gift set")},
	{"soaps", product("SOAP002", "Neem & Tulsi Soap", "Antibacterial soap with neem and tulsi extracts", 249, 120, 4.7, "Herbal", "soap", "neem", "tulsi", "antibacterial")},
	{"soaps", product("SOAP003", "Charcoal Detox Soap", "Activated charcoal soap for deep cleansing", 349, 90, 4.5, "Charcoal", "soap", "charcoal", "detox", "cleansing")},

	{"home_decor", product("DEC001", "Decorative Glass Vase", "Elegant handcrafted glass vase for flowers", 799, 35, 4.4, "Glass", "vase", "glass", "decorative", "flowers")},
	{"home_decor", product("DEC002", "Wooden Wall Art", "Handcrafted wooden wall art with traditional designs", 1299, 20, 4.8, "Wood", "wall art", "wooden", "traditional", "handcrafted")},
	{"home_decor", product("DEC003", "Ceramic Planter Set", "Set of 3 beautiful ceramic planters", 999, 40, 4.6, "Ceramic", "planter", "ceramic", "plants", "set")},
}

// Knowledge 店铺政策与常见问题
var Knowledge = []KnowledgeDoc{
	{
		Source: "faq/shipping",
		Title:  "Shipping",
		Content: `We ship to all serviceable pin codes across India. Orders are dispatched within 1-2 business days and usually delivered in 5 to 10 days.
Shipping is free on orders above ₹999; a flat ₹79 fee applies to smaller orders. You will receive a tracking ID (starting with TRK) as soon as your order is placed.`,
	},
	{
		Source: "faq/returns",
		Title:  "Returns and refunds",
		Content: `Items can be returned within 7 days of delivery if they are unused and in original packaging. Candles and soaps can only be returned if they arrive damaged.
Refunds are issued to the original payment method within 5-7 business days after the return is received. Cash on delivery orders are refunded by bank transfer or UPI.`,
	},
	{
		Source: "faq/payments",
		Title:  "Payments",
		Content: `We accept Cash on Delivery (COD), UPI, credit and debit cards, net banking and popular wallets.
COD orders are confirmed immediately. Online payments stay pending until the payment gateway confirms them; if a payment fails you can retry it from your orders page.`,
	},
	{
		Source: "faq/care",
		Title:  "Product care",
		Content: `Trim candle wicks to 5 mm before each burn and never leave a burning candle unattended. Store handmade soaps in a dry soap dish to make them last longer.
Hand wash cotton kurtis in cold water and dry them in shade to keep the block print colours bright.`,
	},
	{
		Source: "store/about",
		Title:  "About AJ Creations",
		Content: `AJ Creations is a small Indian brand selling handcrafted women's clothing, natural cosmetics, aromatic candles, handmade soaps and home decor.
Customer support is available Monday to Saturday, 10 AM to 7 PM IST, by email at support@ajcreations.in or WhatsApp. Aap Hindi ya English mein baat kar sakte hain.`,
	},
}
