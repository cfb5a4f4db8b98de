package classify

import "strings"

// Features are the lower-cased signals of one node plus its topology. Rules
// match against Features only.
type Features struct {
	ID          string
	Type        string
	Label       string
	Description string
	Technology  string
	Provider    string
	Icon        string

	HasIncoming bool // an edge from another node points here
	HasOutgoing bool // an edge points from here to another node
}

// Source reports a node with outgoing but no incoming edges.
func (f Features) Source() bool { return !f.HasIncoming && f.HasOutgoing }

// Sink reports a node with incoming but no outgoing edges.
func (f Features) Sink() bool { return f.HasIncoming && !f.HasOutgoing }

// Rule adds Weight points to Layer for every hit reported by Match.
// Most rules report 0 or 1 hits; phrase rules count each matching phrase.
type Rule struct {
	Name   string
	Layer  Layer
	Weight int
	Match  func(Features) int
}

// Rule weights.
const (
	WeightTopology   = 15
	WeightExactType  = 50
	WeightKeyword    = 15
	WeightIcon       = 10
	WeightPhrase     = 5
	WeightTechnology = 10
	WeightCloudData  = 5
)

// =============================================================================
// Predicates
// =============================================================================

func hit(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

func containsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func equalsAny(s string, terms ...string) bool {
	for _, t := range terms {
		if s == t {
			return true
		}
	}
	return false
}

func topology(pred func(Features) bool) func(Features) int {
	return func(f Features) int { return hit(pred(f)) }
}

func exactType(types ...string) func(Features) int {
	return func(f Features) int { return hit(equalsAny(f.Type, types...)) }
}

// keywords matches when any term occurs in the id, type or label.
func keywords(terms ...string) func(Features) int {
	return func(f Features) int {
		return hit(containsAny(f.ID, terms...) || containsAny(f.Type, terms...) || containsAny(f.Label, terms...))
	}
}

func icon(terms ...string) func(Features) int {
	return func(f Features) int { return hit(containsAny(f.Icon, terms...)) }
}

// phrases counts every term found in the description.
func phrases(terms ...string) func(Features) int {
	return func(f Features) int {
		n := 0
		for _, t := range terms {
			if strings.Contains(f.Description, t) {
				n++
			}
		}
		return n
	}
}

func technology(terms ...string) func(Features) int {
	return func(f Features) int { return hit(containsAny(f.Technology, terms...)) }
}

// branch is one arm of a first-match-wins label rule.
type branch struct {
	name   string
	layer  Layer
	weight int
	terms  []string // nil matches anything (the else arm)
}

// labelChain expands an if/else-if cascade over the label into independent
// rules: arm i fires only when guard holds, arm i matches and no earlier arm
// matched.
func labelChain(prefix, guard string, arms ...branch) []Rule {
	rules := make([]Rule, len(arms))
	for i, arm := range arms {
		earlier := arms[:i]
		arm := arm
		rules[i] = Rule{
			Name:   prefix + "/" + arm.name,
			Layer:  arm.layer,
			Weight: arm.weight,
			Match: func(f Features) int {
				if !strings.Contains(f.Label, guard) {
					return 0
				}
				for _, e := range earlier {
					if e.terms == nil || containsAny(f.Label, e.terms...) {
						return 0
					}
				}
				return hit(arm.terms == nil || containsAny(f.Label, arm.terms...))
			},
		}
	}
	return rules
}

// =============================================================================
// Rule table
// =============================================================================

// DefaultRules returns the built-in rule table. The slice is freshly
// allocated and may be modified by the caller.
func DefaultRules() []Rule {
	rules := []Rule{
		{"topology/source", LayerClient, WeightTopology, topology(Features.Source)},
		{"topology/sink", LayerData, WeightTopology, topology(Features.Sink)},

		{"type/client", LayerClient, WeightExactType, exactType("client", "browser", "mobile", "frontend")},
		{"type/network", LayerNetwork, WeightExactType, exactType("gateway", "loadbalancer", "firewall", "cdn")},
		{"type/identity", LayerIdentity, WeightExactType, exactType("auth", "authentication", "identity")},
		{"type/service", LayerService, WeightExactType, exactType("service", "microservice", "api")},
		{"type/messaging", LayerMessaging, WeightExactType, exactType("queue", "messaging", "eventbus", "broker")},
		{"type/processing", LayerProcessing, WeightExactType, exactType("processing", "analytics", "etl")},
		{"type/data", LayerData, WeightExactType, exactType("database", "storage", "cache")},
		{"type/observability", LayerObservability, WeightExactType, exactType("monitoring", "logging", "metrics")},
	}

	rules = append(rules, labelChain("label-microservice", "microservice",
		branch{"commerce", LayerService, 40, []string{"payment", "checkout"}},
		branch{"messaging", LayerMessaging, 40, []string{"chat", "message", "notification"}},
		branch{"identity", LayerIdentity, 40, []string{"auth", "identity"}},
		branch{"processing", LayerProcessing, 40, []string{"analytics", "matchmaking"}},
		branch{"default", LayerService, 35, nil},
	)...)

	rules = append(rules, labelChain("label-service", "service",
		branch{"identity", LayerIdentity, 25, []string{"auth"}},
		branch{"messaging", LayerMessaging, 25, []string{"chat", "message"}},
		branch{"observability", LayerObservability, 25, []string{"monitoring", "logging"}},
		branch{"default", LayerService, 20, nil},
	)...)

	rules = append(rules,
		Rule{"keyword/client", LayerClient, WeightKeyword, keywords(
			"client", "user", "browser", "mobile", "desktop", "frontend", "ui", "interface",
			"app", "react", "angular", "vue", "customer")},
		Rule{"keyword/network", LayerNetwork, WeightKeyword, keywords(
			"gateway", "firewall", "waf", "cdn", "load_balancer", "loadbalancer", "proxy",
			"router", "switch", "network", "dns", "vpn", "ssl", "tls", "https", "ingress",
			"perimeter", "dmz", "payment gateway")},
		Rule{"keyword/identity", LayerIdentity, WeightKeyword, keywords(
			"auth", "authentication", "authorization", "identity", "oauth", "oidc", "jwt",
			"token", "login", "logout", "sso", "saml", "keycloak", "okta", "cognito", "vault",
			"secret", "key", "certificate", "password")},
		Rule{"keyword/service", LayerService, WeightKeyword, keywords(
			"service", "api", "microservice", "server", "backend", "function", "lambda",
			"compute", "container", "kubernetes", "pod", "endpoint", "controller",
			"game server", "leaderboard")},
		Rule{"keyword/messaging", LayerMessaging, WeightKeyword, keywords(
			"queue", "topic", "messaging", "kafka", "rabbitmq", "activemq", "sqs", "sns",
			"kinesis", "eventbridge", "pubsub", "event", "bus", "mq", "jms", "broker",
			"message", "stream", "chat", "notification")},
		Rule{"keyword/processing", LayerProcessing, WeightKeyword, keywords(
			"ml", "ai", "model", "analytics", "etl", "spark", "hadoop", "feature", "processing",
			"transformation", "pipeline", "dataflow", "data-flow", "batch", "process",
			"calculation", "compute", "real-time", "engine", "matchmaking")},
		Rule{"keyword/data", LayerData, WeightKeyword, keywords(
			"database", "db", "data", "storage", "sql", "nosql", "mysql", "postgres", "mongodb",
			"dynamodb", "cosmos", "redis", "cache", "store", "s3", "bucket", "blob", "file",
			"volume", "persistence", "oracle", "elastic", "index")},
		Rule{"keyword/observability", LayerObservability, WeightKeyword, keywords(
			"monitor", "logging", "log", "metric", "trace", "alert", "observability",
			"prometheus", "grafana", "kibana", "splunk", "cloudwatch", "datadog", "sentry",
			"newrelic", "apm", "dashboard")},
		Rule{"keyword/external", LayerExternal, WeightKeyword, keywords(
			"external", "third-party", "third_party", "integration", "saas", "partner",
			"vendor", "provider", "external-service", "outside", "foreign")},

		Rule{"icon/client", LayerClient, WeightIcon, icon("browser", "client", "desktop", "mobile", "user", "frontend")},
		Rule{"icon/network", LayerNetwork, WeightIcon, icon("gateway", "firewall", "network", "cdn", "proxy", "router")},
		Rule{"icon/identity", LayerIdentity, WeightIcon, icon("auth", "security", "lock", "key", "identity", "password")},
		Rule{"icon/service", LayerService, WeightIcon, icon("api", "service", "server", "lambda", "function", "container")},
		Rule{"icon/messaging", LayerMessaging, WeightIcon, icon("queue", "messaging", "event", "kafka", "rabbit", "bus")},
		Rule{"icon/processing", LayerProcessing, WeightIcon, icon("analytics", "process", "etl", "transform", "ml", "ai")},
		Rule{"icon/data", LayerData, WeightIcon, icon("database", "storage", "db", "sql", "data", "cache")},
		Rule{"icon/observability", LayerObservability, WeightIcon, icon("monitor", "log", "chart", "graph", "alert", "dashboard")},
		Rule{"icon/external", LayerExternal, WeightIcon, icon("external", "saas", "third-party", "integration")},

		Rule{"description/client", LayerClient, WeightPhrase, phrases("frontend", "user interface", "ui component")},
		Rule{"description/network", LayerNetwork, WeightPhrase, phrases("network boundary", "traffic routing", "perimeter")},
		Rule{"description/identity", LayerIdentity, WeightPhrase, phrases("authentication", "identity provider", "security token")},
		Rule{"description/service", LayerService, WeightPhrase, phrases("business logic", "api endpoint", "microservice")},
		Rule{"description/messaging", LayerMessaging, WeightPhrase, phrases("message broker", "event stream", "async communication")},
		Rule{"description/processing", LayerProcessing, WeightPhrase, phrases("data processing", "transformation", "analytics pipeline")},
		Rule{"description/data", LayerData, WeightPhrase, phrases("data store", "persistence", "database")},
		Rule{"description/observability", LayerObservability, WeightPhrase, phrases("monitoring", "logging system", "observability")},
		Rule{"description/external", LayerExternal, WeightPhrase, phrases("third party", "external system", "integration")},

		Rule{"technology/client", LayerClient, WeightTechnology, technology(
			"react", "angular", "vue", "html", "css", "javascript", "typescript", "ios", "android", "flutter")},
		Rule{"technology/network", LayerNetwork, WeightTechnology, technology(
			"nginx", "haproxy", "istio", "envoy", "kong", "traefik", "cloudfront")},
		Rule{"technology/identity", LayerIdentity, WeightTechnology, technology(
			"oauth", "jwt", "keycloak", "okta", "auth0", "cognito", "active-directory")},
		Rule{"technology/service", LayerService, WeightTechnology, technology(
			"spring", "express", "django", "node", "dotnet", "java", "go", "ruby", "php")},
		Rule{"technology/messaging", LayerMessaging, WeightTechnology, technology(
			"kafka", "rabbitmq", "activemq", "sns", "sqs", "pubsub", "nats", "zeromq")},
		Rule{"technology/processing", LayerProcessing, WeightTechnology, technology(
			"spark", "flink", "hadoop", "airflow", "databricks", "tensorflow", "pytorch")},
		Rule{"technology/data", LayerData, WeightTechnology, technology(
			"mysql", "postgres", "mongodb", "cassandra", "redis", "elasticsearch", "dynamodb", "cosmosdb")},
		Rule{"technology/observability", LayerObservability, WeightTechnology, technology(
			"prometheus", "grafana", "datadog", "splunk", "elk", "cloudwatch", "newrelic")},

		Rule{"provider/cloud-storage", LayerData, WeightCloudData, func(f Features) int {
			return hit(equalsAny(f.Provider, "aws", "azure", "gcp") &&
				(strings.Contains(f.Type, "database") || strings.Contains(f.Type, "storage")))
		}},
	)
	return rules
}
