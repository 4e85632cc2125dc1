package model

// AllModels 所有模型的统一导入点，用于 AutoMigrate
var AllModels = []interface{}{
	&Category{},
	&Product{},
	&CartItem{},
	&Order{},
	&OrderItem{},
	&User{},
	&AuthToken{},
}
