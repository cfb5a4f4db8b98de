package theme

// Default returns the built-in themes for layers 0 through 10. Layers 0-8
// match the classifier's layers; 9 and 10 are available to callers that
// assign layer indices themselves.
func Default() *Registry {
	return NewRegistry(map[int]Theme{
		0: {
			Label:       "Client Layer",
			Color:       "rgba(240, 240, 245, 0.75)",
			BorderColor: "rgba(180, 180, 190, 0.8)",
			Icon:        "mdi:devices",
			Description: "Client applications, user interfaces, and consumer-facing components",
		},
		1: {
			Label:       "Network / Edge Layer",
			Color:       "rgba(255, 230, 230, 0.75)",
			BorderColor: "rgba(235, 140, 140, 0.8)",
			Icon:        "mdi:security-network",
			Description: "Network infrastructure, firewalls, load balancers, and security components",
		},
		2: {
			Label:       "Identity Layer",
			Color:       "rgba(240, 230, 255, 0.75)",
			BorderColor: "rgba(180, 150, 220, 0.8)",
			Icon:        "mdi:shield-lock",
			Description: "Authentication, authorization, and identity management services",
		},
		3: {
			Label:       "Service Layer",
			Color:       "rgba(230, 255, 230, 0.75)",
			BorderColor: "rgba(110, 190, 110, 0.8)",
			Icon:        "mdi:cube-outline",
			Description: "Core business services, APIs, and microservices",
		},
		4: {
			Label:       "Messaging Layer",
			Color:       "rgba(255, 240, 225, 0.75)",
			BorderColor: "rgba(235, 170, 110, 0.8)",
			Icon:        "mdi:message-processing-outline",
			Description: "Message queues, event buses, and asynchronous communication",
		},
		5: {
			Label:       "Processing Layer",
			Color:       "rgba(255, 250, 220, 0.75)",
			BorderColor: "rgba(230, 190, 100, 0.8)",
			Icon:        "mdi:cog-transfer-outline",
			Description: "Data processing, ETL pipelines, and transformation services",
		},
		6: {
			Label:       "Data Storage Layer",
			Color:       "rgba(225, 240, 255, 0.75)",
			BorderColor: "rgba(100, 160, 220, 0.8)",
			Icon:        "mdi:database",
			Description: "Databases, storage systems, caches, and persistence",
		},
		7: {
			Label:       "Monitoring Layer",
			Color:       "rgba(225, 250, 245, 0.75)",
			BorderColor: "rgba(100, 200, 180, 0.8)",
			Icon:        "mdi:monitor-dashboard",
			Description: "Monitoring, logging, metrics, and observability services",
		},
		8: {
			Label:       "AI/ML Layer",
			Color:       "rgba(230, 235, 255, 0.75)",
			BorderColor: "rgba(130, 140, 220, 0.8)",
			Icon:        "mdi:brain",
			Description: "AI models, machine learning systems, and intelligent components",
		},
		9: {
			Label:       "DevOps Layer",
			Color:       "rgba(255, 235, 245, 0.75)",
			BorderColor: "rgba(220, 150, 190, 0.8)",
			Icon:        "mdi:pipe",
			Description: "CI/CD pipelines, build systems, and deployment infrastructure",
		},
		10: {
			Label:       "Other Components",
			Color:       "rgba(245, 240, 235, 0.75)",
			BorderColor: "rgba(190, 170, 150, 0.8)",
			Icon:        "mdi:layers",
			Description: "Miscellaneous components that don't fit other categories",
		},
	}, FallbackLayer)
}
