package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

const titularKinship = "Titular"

var ErrFamilyIndex = errors.New("membro familiar não encontrado")

// NewIntakeRecord returns a blank record with the office defaults: INSS as
// the opposing party in Fortaleza/CE and the titular as the only family
// member.
func NewIntakeRecord() IntakeRecord {
	return IntakeRecord{
		Cidade: "Fortaleza",
		UF:     "CE",
		ComposicaoFamiliar: []FamilyMember{
			titularMember(),
		},
		ParteContrariaCNPJ:        "29.979.036/0001-40",
		ParteContrariaNome:        "INSS - Instituto Nacional do Seguro Social",
		ParteContrariaRazaoSocial: "Instituto Nacional do Seguro Social",
		ParteContrariaCEP:         "60035-150",
		ParteContrariaEndereco:    "Rua Pedro Pereira, 383",
		ParteContrariaBairro:      "Centro",
		ParteContrariaCidade:      "Fortaleza",
		ParteContrariaUF:          "CE",
		BeneficioRequerido:        "BPC/LOAS para idoso",
		ViaProcesso:               "Administrativa",
		AreaJuridica:              AreaPrevidenciario,
	}
}

func titularMember() FamilyMember {
	return FamilyMember{GrauParentesco: titularKinship, Renda: "0,00"}
}

// ApplyPatch merges the keys present in raw into the record. The family
// composition is left untouched; it changes only through the family methods.
func (r *IntakeRecord) ApplyPatch(raw []byte) error {
	next := *r
	next.ComposicaoFamiliar = nil
	if err := json.Unmarshal(raw, &next); err != nil {
		return fmt.Errorf("decode intake patch: %w", err)
	}
	next.ComposicaoFamiliar = r.ComposicaoFamiliar
	*r = next
	r.ensureTitular()
	return nil
}

func (r *IntakeRecord) AddFamilyMember() {
	r.ensureTitular()
	r.ComposicaoFamiliar = append(r.ComposicaoFamiliar, FamilyMember{})
}

// UpdateFamilyMember replaces member index. The titular keeps its name and
// kinship; only birth date and income can change.
func (r *IntakeRecord) UpdateFamilyMember(index int, member FamilyMember) error {
	r.ensureTitular()
	if index < 0 || index >= len(r.ComposicaoFamiliar) {
		return ErrFamilyIndex
	}
	if index == 0 {
		current := r.ComposicaoFamiliar[0]
		member.Nome = current.Nome
		member.GrauParentesco = current.GrauParentesco
	}
	r.ComposicaoFamiliar[index] = member
	return nil
}

// RemoveFamilyMember drops member index and reports whether anything was
// removed. Index 0 is the titular and is never removed.
func (r *IntakeRecord) RemoveFamilyMember(index int) bool {
	r.ensureTitular()
	if index <= 0 || index >= len(r.ComposicaoFamiliar) {
		return false
	}
	members := make([]FamilyMember, 0, len(r.ComposicaoFamiliar)-1)
	members = append(members, r.ComposicaoFamiliar[:index]...)
	members = append(members, r.ComposicaoFamiliar[index+1:]...)
	r.ComposicaoFamiliar = members
	return true
}

// MissingRequired lists the labels of required fields left blank.
func (r IntakeRecord) MissingRequired() []string {
	var missing []string
	if strings.TrimSpace(r.Nome) == "" {
		missing = append(missing, "Nome Completo")
	}
	if strings.TrimSpace(r.CPF) == "" {
		missing = append(missing, "CPF")
	}
	return missing
}

func (r *IntakeRecord) ensureTitular() {
	if len(r.ComposicaoFamiliar) == 0 {
		r.ComposicaoFamiliar = []FamilyMember{titularMember()}
	}
}
