// Package generator synthesizes Suricata-style alert events for
// development and load testing.
package generator

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

var signatures = []struct {
	text     string
	category string
	severity int
}{
	{"ET SCAN Potential SSH Scan", "Attempted Information Leak", 2},
	{"ET SCAN Nmap Scripting Engine User-Agent Detected", "Web Application Attack", 2},
	{"ET POLICY SSH Brute Force Attempt", "Attempted Administrator Privilege Gain", 1},
	{"ET MALWARE Possible Trojan Download", "A Network Trojan was Detected", 1},
	{"ET DNS Query to a Suspicious Domain", "Potentially Bad Traffic", 3},
	{"ET WEB_SERVER SQL Injection Attempt", "Web Application Attack", 1},
	{"ET EXPLOIT Possible CVE Exploitation Attempt", "Attempted User Privilege Gain", 1},
	{"GPL ICMP_INFO PING *NIX", "Misc activity", 3},
}

var protocols = []string{"TCP", "UDP", "ICMP"}
var appProtos = []string{"ssh", "http", "dns", "tls", "ftp", ""}

// Generator produces randomized alert documents.
type Generator struct {
	rnd *rand.Rand
}

// New seeds a generator. seed 0 means time-based.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	gofakeit.Seed(seed)
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Alert returns one Suricata eve-style alert document.
func (g *Generator) Alert() map[string]interface{} {
	sig := signatures[g.rnd.Intn(len(signatures))]
	proto := protocols[g.rnd.Intn(len(protocols))]

	doc := map[string]interface{}{
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"event_type": "alert",
		"src_ip":     gofakeit.IPv4Address(),
		"src_port":   g.rnd.Intn(65535-1024) + 1024,
		"dest_ip":    privateIP(g.rnd),
		"dest_port":  wellKnownPort(g.rnd),
		"proto":      proto,
		"flow_id":    g.rnd.Int63(),
		"alert": map[string]interface{}{
			"signature":    sig.text,
			"signature_id": 2000000 + g.rnd.Intn(100000),
			"category":     sig.category,
			"severity":     sig.severity,
			"action":       "allowed",
		},
	}

	if app := appProtos[g.rnd.Intn(len(appProtos))]; app != "" && proto == "TCP" {
		doc["app_proto"] = app
	}
	return doc
}

// privateIP keeps destinations inside RFC 1918 space so generated
// traffic reads like inbound attacks on a local network.
func privateIP(rnd *rand.Rand) string {
	return fmt.Sprintf("10.%d.%d.%d", rnd.Intn(256), rnd.Intn(256), 1+rnd.Intn(254))
}

func wellKnownPort(rnd *rand.Rand) int {
	ports := []int{22, 53, 80, 443, 8080, 3389, 25}
	return ports[rnd.Intn(len(ports))]
}
