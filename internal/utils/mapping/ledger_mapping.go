package mapping

import (
	"github.com/kolectiva/lets_ledger/internal/core/domain"
	"github.com/kolectiva/lets_ledger/internal/models"
)

func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID: m.AccountID,
		CreatedAt: m.CreatedAt,
	}
}

func ToDomainWallet(m models.Wallet) domain.Wallet {
	return domain.Wallet{
		WalletID:      m.WalletID,
		UserID:        m.UserID,
		BalanceUnits:  m.BalanceUnits,
		BalanceToins:  m.BalanceToins,
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

func ToDomainToken(m models.Token) domain.Token {
	return domain.Token{
		TokenID:       m.TokenID,
		UserID:        m.UserID,
		Amount:        m.Amount,
		Type:          domain.TokenType(m.TokenType),
		Status:        domain.TokenStatus(m.Status),
		Source:        domain.TokenSource(m.Source),
		CaducityDate:  m.CaducityDate,
		CreatedAt:     m.CreatedAt,
		LastUpdatedAt: m.LastUpdatedAt,
	}
}

func ToModelToken(d domain.Token) models.Token {
	return models.Token{
		TokenID:       d.TokenID,
		UserID:        d.UserID,
		Amount:        d.Amount,
		TokenType:     string(d.Type),
		Status:        string(d.Status),
		Source:        string(d.Source),
		CaducityDate:  d.CaducityDate,
		CreatedAt:     d.CreatedAt,
		LastUpdatedAt: d.LastUpdatedAt,
	}
}

func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID: m.TransactionID,
		FromUserID:    m.FromUserID,
		ToUserID:      m.ToUserID,
		Amount:        m.Amount,
		TokenType:     domain.TokenType(m.TokenType),
		Kind:          domain.TransactionKind(m.TransactionType),
		Status:        domain.TransactionStatus(m.Status),
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
}

func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		TransactionID:   d.TransactionID,
		FromUserID:      d.FromUserID,
		ToUserID:        d.ToUserID,
		Amount:          d.Amount,
		TokenType:       string(d.TokenType),
		TransactionType: string(d.Kind),
		Status:          string(d.Status),
		Description:     d.Description,
		CreatedAt:       d.CreatedAt,
	}
}

func ToDomainTransactionSlice(ms []models.Transaction) []domain.Transaction {
	ds := make([]domain.Transaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

func ToDomainTokenSlice(ms []models.Token) []domain.Token {
	ds := make([]domain.Token, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainToken(m)
	}
	return ds
}
