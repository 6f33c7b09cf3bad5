package pangea

import (
	"context"
	"fmt"
)

// Verdict classifies a domain's reputation.
type Verdict string

// Verdicts returned by the Domain Intel service.
const (
	VerdictMalicious  Verdict = "malicious"
	VerdictSuspicious Verdict = "suspicious"
	VerdictBenign     Verdict = "benign"
	VerdictUnknown    Verdict = "unknown"
)

// reputationProvider is the threat-intelligence source queried for
// domain verdicts.
const reputationProvider = "crowdstrike"

type reputationRequest struct {
	Domain   string `json:"domain"`
	Provider string `json:"provider"`
}

type reputationResult struct {
	Data struct {
		Verdict  string   `json:"verdict"`
		Score    int      `json:"score"`
		Category []string `json:"category"`
	} `json:"data"`
}

// Reputation looks up the reputation verdict for a bare domain name.
// Verdict strings the service may add later map to VerdictUnknown.
func (c *Client) Reputation(ctx context.Context, domain string) (Verdict, error) {
	var res reputationResult
	_, err := c.post(ctx, "domain-intel", "/v2/reputation", reputationRequest{Domain: domain, Provider: reputationProvider}, &res)
	if err != nil {
		return VerdictUnknown, fmt.Errorf("domain reputation: %w", err)
	}

	switch v := Verdict(res.Data.Verdict); v {
	case VerdictMalicious, VerdictSuspicious, VerdictBenign, VerdictUnknown:
		return v, nil
	default:
		return VerdictUnknown, nil
	}
}
