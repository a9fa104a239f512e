package domain

// Tables in dependency order, parents first
var Tables = []interface{}{
	&User{},
	&RecommendationSet{},
	&Category{},
	&Product{},
	&ProductDetail{},
	&StoreLink{},
	&StoreRule{},
}
