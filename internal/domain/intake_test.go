package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIntakeRecordStartsWithTitular(t *testing.T) {
	rec := NewIntakeRecord()

	require.Len(t, rec.ComposicaoFamiliar, 1)
	assert.Equal(t, "Titular", rec.ComposicaoFamiliar[0].GrauParentesco)
	assert.Equal(t, "0,00", rec.ComposicaoFamiliar[0].Renda)
	assert.Equal(t, AreaPrevidenciario, rec.AreaJuridica)
	assert.Equal(t, "Fortaleza", rec.Cidade)
}

func TestRemoveTitularIsNoop(t *testing.T) {
	rec := NewIntakeRecord()
	rec.AddFamilyMember()
	before := len(rec.ComposicaoFamiliar)

	assert.False(t, rec.RemoveFamilyMember(0))
	assert.Len(t, rec.ComposicaoFamiliar, before)
	assert.Equal(t, "Titular", rec.ComposicaoFamiliar[0].GrauParentesco)
}

func TestRemoveFamilyMember(t *testing.T) {
	rec := NewIntakeRecord()
	rec.AddFamilyMember()
	rec.AddFamilyMember()
	require.NoError(t, rec.UpdateFamilyMember(1, FamilyMember{Nome: "João", GrauParentesco: "Filho"}))
	require.NoError(t, rec.UpdateFamilyMember(2, FamilyMember{Nome: "Maria", GrauParentesco: "Filha"}))

	assert.True(t, rec.RemoveFamilyMember(1))
	require.Len(t, rec.ComposicaoFamiliar, 2)
	assert.Equal(t, "Maria", rec.ComposicaoFamiliar[1].Nome)

	assert.False(t, rec.RemoveFamilyMember(5))
	assert.False(t, rec.RemoveFamilyMember(-1))
	assert.Len(t, rec.ComposicaoFamiliar, 2)
}

func TestUpdateTitularKeepsIdentity(t *testing.T) {
	rec := NewIntakeRecord()

	err := rec.UpdateFamilyMember(0, FamilyMember{Nome: "Outro", GrauParentesco: "Pai", DataNascimento: "1950-01-02", Renda: "1.412,00"})
	require.NoError(t, err)

	titular := rec.ComposicaoFamiliar[0]
	assert.Equal(t, "Titular", titular.GrauParentesco)
	assert.Empty(t, titular.Nome)
	assert.Equal(t, "1950-01-02", titular.DataNascimento)
	assert.Equal(t, "1.412,00", titular.Renda)

	assert.ErrorIs(t, rec.UpdateFamilyMember(3, FamilyMember{}), ErrFamilyIndex)
}

func TestApplyPatchLeavesFamilyAlone(t *testing.T) {
	rec := NewIntakeRecord()
	rec.AddFamilyMember()

	err := rec.ApplyPatch([]byte(`{"nome":"Ana Souza","cpf":"123.456.789-00","temRepresentante":true,"composicaoFamiliar":[]}`))
	require.NoError(t, err)

	assert.Equal(t, "Ana Souza", rec.Nome)
	assert.Equal(t, "123.456.789-00", rec.CPF)
	assert.True(t, rec.TemRepresentante)
	assert.Equal(t, "Fortaleza", rec.Cidade)
	assert.Len(t, rec.ComposicaoFamiliar, 2)
}

func TestApplyPatchRejectsBadJSON(t *testing.T) {
	rec := NewIntakeRecord()
	require.Error(t, rec.ApplyPatch([]byte(`{"nome":`)))
	assert.Empty(t, rec.Nome)
}

func TestMissingRequired(t *testing.T) {
	rec := NewIntakeRecord()
	assert.Equal(t, []string{"Nome Completo", "CPF"}, rec.MissingRequired())

	rec.Nome = "Ana"
	rec.CPF = "123"
	assert.Empty(t, rec.MissingRequired())
}

func TestCatalogSelectKeepsDeclarationOrder(t *testing.T) {
	catalog := NewCatalog(map[string]string{"procuracao": "tpl-1"})

	docs := catalog.Select(map[string]bool{
		"peticao_inicial":     true,
		"procuracao":          true,
		"contrato_honorarios": false,
	})

	require.Len(t, docs, 2)
	assert.Equal(t, "procuracao", docs[0].ID)
	assert.Equal(t, "tpl-1", docs[0].TemplateID)
	assert.Equal(t, "peticao_inicial", docs[1].ID)

	assert.NoError(t, catalog.Validate([]string{"procuracao"}))
	assert.Error(t, catalog.Validate([]string{"nope"}))
}

func TestInterviewItemKeepsExtraColumns(t *testing.T) {
	var item InterviewItem
	err := json.Unmarshal([]byte(`{"id":42,"nome":"Ana","cpf":12345678900,"area_juridica":"Trabalhista","data_cadastro":"2024-05-01","bairro":"Centro"}`), &item)
	require.NoError(t, err)

	assert.Equal(t, Cell("42"), item.ID)
	assert.Equal(t, Cell("12345678900"), item.CPF)
	assert.Equal(t, map[string]any{"bairro": "Centro"}, item.Extra)

	out, err := json.Marshal(item)
	require.NoError(t, err)

	var row map[string]any
	require.NoError(t, json.Unmarshal(out, &row))
	assert.Equal(t, "Centro", row["bairro"])
	assert.Equal(t, "42", row["id"])
}
