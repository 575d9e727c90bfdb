package credit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/supabase-community/supabase-go"

	"emotion-video-server/modules/common/org"
)

type Client struct {
	supabase *supabase.Client
	orgs     *org.Resolver
	price    int
}

// NewClient - Credit 클라이언트 생성 (영상 1개당 price 크레딧)
func NewClient(supabaseClient *supabase.Client, price int) *Client {
	return &Client{
		supabase: supabaseClient,
		orgs:     org.NewResolver(supabaseClient),
		price:    price,
	}
}

// Price - 영상 1개당 크레딧
func (c *Client) Price() int {
	return c.price
}

// balanceSource - 차감 대상 테이블/컬럼
type balanceSource struct {
	table    string
	column   string
	keyField string
	keyValue string
}

func memberSource(userID string) balanceSource {
	return balanceSource{table: "quel_member", column: "quel_member_credit", keyField: "quel_member_id", keyValue: userID}
}

func orgSource(orgID string) balanceSource {
	return balanceSource{table: "quel_organization", column: "org_credit", keyField: "org_id", keyValue: orgID}
}

// DeductForVideo - 완성된 영상 1개에 대한 크레딧 차감 및 트랜잭션 기록
// 활성 조직 소속이면 조직 크레딧, 아니면 개인 크레딧
func (c *Client) DeductForVideo(ctx context.Context, userID, jobID, talkID string) error {
	orgID, isOrgCredit := c.orgs.CreditOrg(userID)

	source := memberSource(userID)
	if isOrgCredit {
		source = orgSource(orgID)
		log.Printf("💰 Deducting ORGANIZATION credits: OrgID=%s, User=%s, Job=%s, Total=%d credits", orgID, userID, jobID, c.price)
	} else {
		log.Printf("💰 Deducting PERSONAL credits: User=%s, Job=%s, Total=%d credits", userID, jobID, c.price)
	}

	currentCredits, err := c.balance(source)
	if err != nil {
		return err
	}
	newBalance := NewBalance(currentCredits, c.price)

	log.Printf("💰 Credit balance: %d → %d (-%d)", currentCredits, newBalance, c.price)

	_, _, err = c.supabase.From(source.table).
		Update(map[string]interface{}{
			source.column: newBalance,
		}, "", "").
		Eq(source.keyField, source.keyValue).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to deduct credits: %w", err)
	}

	transactionData := map[string]interface{}{
		"user_id":          userID,
		"transaction_type": "DEDUCT",
		"amount":           -c.price,
		"balance_after":    newBalance,
		"description":      "Generated Talking Video",
		"job_id":           jobID,
		"talk_id":          talkID,
	}
	if isOrgCredit {
		transactionData["org_id"] = orgID
		transactionData["used_by_member_id"] = userID
	}

	_, _, err = c.supabase.From("quel_credits").
		Insert(transactionData, false, "", "", "").
		Execute()
	if err != nil {
		log.Printf("⚠️  Failed to record transaction for job %s: %v", jobID, err)
	}

	log.Printf("✅ Credits deducted successfully: %d credits from user %s", c.price, userID)
	return nil
}

// balance - 현재 잔액 조회
func (c *Client) balance(source balanceSource) (int, error) {
	data, _, err := c.supabase.From(source.table).
		Select(source.column, "", false).
		Eq(source.keyField, source.keyValue).
		Execute()
	if err != nil {
		return 0, fmt.Errorf("failed to fetch credits from %s: %w", source.table, err)
	}

	var rows []map[string]json.Number
	if err := json.Unmarshal(data, &rows); err != nil {
		return 0, fmt.Errorf("failed to parse %s data: %w", source.table, err)
	}

	if len(rows) == 0 {
		return 0, fmt.Errorf("%s not found: %s", source.keyField, source.keyValue)
	}

	value, err := rows[0][source.column].Int64()
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", source.column, err)
	}
	return int(value), nil
}

// NewBalance - 잔액은 0 아래로 내려가지 않음
func NewBalance(current, price int) int {
	if current < price {
		return 0
	}
	return current - price
}
