package models

// DefaultProducts returns the built-in catalog the shop launches with when
// neither the remote store nor the local snapshot has anything to offer.
// Returns a fresh copy so callers can mutate freely.
func DefaultProducts() []Product {
	return []Product{
		{
			ID:          1,
			Name:        "Sonsuz İpek Şakayık",
			Category:    "Silk Masterpiece",
			Price:       2850,
			Image:       "https://images.unsplash.com/photo-1563241527-3004b7be025b?q=80&w=800",
			Description: "Su istemez, güneş beklemez. Yıllarca ilk günkü zarafetini korur.",
			Color:       ColorPink,
		},
		{
			ID:          2,
			Name:        "Ebedi Pampas Otu",
			Category:    "Dried Collection",
			Price:       1450,
			Image:       "https://images.unsplash.com/photo-1596627006856-114757595513?q=80&w=800",
			Description: "Dökülme yapmayan özel işlem. Bohem ve zamansız bir dokunuş.",
			Color:       ColorBrown,
		},
		{
			ID:          3,
			Name:        "İpek Dokunuşlu Orkide",
			Category:    "Real-Touch Series",
			Price:       3200,
			Image:       "https://images.unsplash.com/photo-1566927467984-6332be7377d0?q=80&w=800",
			Description: "Gerçeğinden ayırt edilemeyen doku. Evinizin kalıcı mücevheri.",
			Color:       ColorWhite,
		},
		{
			ID:          4,
			Name:        "Miras Pamuk Dalları",
			Category:    "Natural Dried",
			Price:       950,
			Image:       "https://images.unsplash.com/photo-1516205651411-84f31072aa0e?q=80&w=800",
			Description: "Doğal kurutulmuş, %100 organik pamuk. Saf ve yalın güzellik.",
			Color:       ColorWhite,
		},
		{
			ID:          5,
			Name:        "Silver Dollar Okaliptüs",
			Category:    "Faux Greenery",
			Price:       1100,
			Image:       "https://images.unsplash.com/photo-1598522338166-70e0a5585d82?q=80&w=800",
			Description: "Soğuk yeşil tonlarıyla minimalist alanlar için ideal tamamlayıcı.",
			Color:       ColorGreen,
		},
		{
			ID:          6,
			Name:        "Kurutulmuş Ortanca",
			Category:    "Dried Collection",
			Price:       1650,
			Image:       "https://images.unsplash.com/photo-1595356269931-d8579979b009?q=80&w=800",
			Description: "Vintage görünümü sevenler için, sonbaharın en güzel tonları.",
			Color:       ColorPink,
		},
		{
			ID:          7,
			Name:        "Zeytin Dalı Demeti",
			Category:    "Faux Greenery",
			Price:       1350,
			Image:       "https://images.unsplash.com/photo-1463936575229-469941621863?q=80&w=800",
			Description: "Akdeniz esintisi. Barışın ve doğallığın simgesi yapay zeytin dalları.",
			Color:       ColorGreen,
		},
		{
			ID:          8,
			Name:        "Yabani Kuru Başaklar",
			Category:    "Dried Collection",
			Price:       850,
			Image:       "https://images.unsplash.com/photo-1621980649733-1ec9413247c4?q=80&w=800",
			Description: "Altın sarısı tonlarıyla evinize sıcaklık ve bereket katar.",
			Color:       ColorBrown,
		},
	}
}
