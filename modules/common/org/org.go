package org

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"
)

// OrgStatus 상수
const (
	StatusActive    = "active"
	StatusPending   = "pending"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
	StatusDeleted   = "deleted"
)

// Resolver - 사용자 → 조직 조회 (quel_organization_member, quel_organization)
type Resolver struct {
	supabase *supabase.Client
}

func NewResolver(supabaseClient *supabase.Client) *Resolver {
	return &Resolver{supabase: supabaseClient}
}

// MemberOrg - 사용자의 조직 ID, 없으면 ""
func (r *Resolver) MemberOrg(userID string) (string, error) {
	var members []struct {
		OrgID string `json:"org_id"`
	}

	data, _, err := r.supabase.From("quel_organization_member").
		Select("org_id", "", false).
		Eq("member_id", userID).
		Execute()
	if err != nil {
		return "", fmt.Errorf("failed to fetch organization member: %w", err)
	}

	if err := json.Unmarshal(data, &members); err != nil {
		return "", fmt.Errorf("failed to parse organization member: %w", err)
	}

	if len(members) == 0 {
		return "", nil
	}
	return members[0].OrgID, nil
}

// IsActive - 조직이 active 상태인지 확인
func (r *Resolver) IsActive(orgID string) bool {
	if orgID == "" {
		return false
	}

	var orgs []struct {
		OrgStatus string `json:"org_status"`
	}

	data, _, err := r.supabase.From("quel_organization").
		Select("org_status", "", false).
		Eq("org_id", orgID).
		Execute()
	if err != nil {
		log.Printf("⚠️ [Org] Failed to check org_status for %s: %v", orgID, err)
		return false
	}

	if err := json.Unmarshal(data, &orgs); err != nil {
		log.Printf("⚠️ [Org] Failed to parse org data for %s: %v", orgID, err)
		return false
	}

	if len(orgs) == 0 {
		log.Printf("⚠️ [Org] Organization not found: %s", orgID)
		return false
	}

	return IsActiveStatus(orgID, orgs[0].OrgStatus)
}

// IsActiveStatus - org_status 값 판정
func IsActiveStatus(orgID, status string) bool {
	if status == StatusActive {
		log.Printf("✅ [Org] Organization %s is active", orgID)
		return true
	}
	log.Printf("⚠️ [Org] Organization %s status is '%s' (not active)", orgID, status)
	return false
}

// CreditOrg - 조직 크레딧을 써야 하면 조직 ID와 true
// 조직 조회가 실패하면 개인 크레딧으로 처리
func (r *Resolver) CreditOrg(userID string) (string, bool) {
	orgID, err := r.MemberOrg(userID)
	if err != nil {
		log.Printf("⚠️ [Org] Failed to get user organization: %v", err)
		return "", false
	}
	if !r.IsActive(orgID) {
		return "", false
	}
	return orgID, true
}
