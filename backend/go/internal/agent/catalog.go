package agent

// DefaultCatalog 返回内置的 Agent 目录。每次调用返回新的切片。
func DefaultCatalog() []Agent {
	return []Agent{
		{
			ID:          "marie",
			Name:        "MARIE",
			Role:        "Support Chatbot",
			Status:      StatusActive,
			Description: "Agent de support client 24/7, répond aux questions et escalade si nécessaire",
			Capabilities: []string{
				"Réponses contextuelles",
				"Multi-langue (FR/EN)",
				"Mémoire de conversation",
				"Escalade vers humain",
			},
		},
		{
			ID:          "john",
			Name:        "JOHN",
			Role:        "Social Media Manager",
			Status:      StatusComingSoon,
			Description: "Gère les réseaux sociaux, crée et publie du contenu",
			Capabilities: []string{
				"Génération de posts",
				"Création de visuels",
				"Planification automatique",
				"LinkedIn, Instagram, TikTok",
			},
		},
		{
			ID:          "hugo",
			Name:        "HUGO",
			Role:        "Content Generator",
			Status:      StatusComingSoon,
			Description: "Génère du contenu marketing et SEO",
			Capabilities: []string{
				"Articles de blog SEO",
				"Descriptions produits",
				"Emails marketing",
				"Traduction multi-langues",
			},
		},
		{
			ID:          "lucas",
			Name:        "LUCAS",
			Role:        "Quote Generator",
			Status:      StatusComingSoon,
			Description: "Crée des devis personnalisés automatiquement",
			Capabilities: []string{
				"Analyse des besoins",
				"Calcul de prix intelligent",
				"Export PDF",
				"Envoi automatique",
			},
		},
		{
			ID:          "emma",
			Name:        "EMMA",
			Role:        "Email Responder",
			Status:      StatusComingSoon,
			Description: "Gère et répond aux emails automatiquement",
			Capabilities: []string{
				"Connexion Gmail/Outlook",
				"Catégorisation auto",
				"Réponses intelligentes",
				"Détection d'urgence",
			},
		},
		{
			ID:          "noah",
			Name:        "NOAH",
			Role:        "Analytics & Insights",
			Status:      StatusComingSoon,
			Description: "Analyse les données et génère des insights",
			Capabilities: []string{
				"Tableaux de bord",
				"Rapports automatiques",
				"Prédictions",
				"Alertes intelligentes",
			},
		},
	}
}
