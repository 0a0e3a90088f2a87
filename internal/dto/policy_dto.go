package dto

import "rich-text-bridge/pkg/policy"

type ParsePolicyRequest struct {
	FieldConfig *policy.FieldConfiguration `json:"field_config"`
}

type PolicyResponse struct {
	Policy           policy.Policy `json:"policy"`
	AllowedNodeTypes []string      `json:"allowed_node_types"`
	AllowedMarks     []string      `json:"allowed_marks"`
	Fingerprint      string        `json:"fingerprint"`
}
