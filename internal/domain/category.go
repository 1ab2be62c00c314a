package domain

var incomeCategories = []string{
	"Salário",
	"Investimentos",
	"Dividendos",
	"Aluguel Recebido",
	"Freelance / Serviço Extra",
	"Venda de Itens",
	"Prêmios / Loteria",
	"Reembolsos",
	"Bonificações",
	"13º Salário",
	"Restituição de Imposto de Renda",
	"Doações Recebidas",
	"Pensão",
	"Aposentadoria",
	"Auxílio Governamental",
	"Transferência de Terceiros",
	"Ganhos em Criptomoedas",
	"Juros",
	"Cashback",
	"Deposito em Conta",
	"Outros",
}

var expenseCategories = []string{
	// Despesas fixas
	"Aluguel",
	"Condomínio",
	"Financiamento Imobiliário",
	"Prestação de Veículo",
	"Seguro (Auto, Vida, Saúde, etc.)",

	// Moradia
	"Manutenção da Casa",
	"Móveis / Eletrodomésticos",
	"Decoração",
	"Produtos de Limpeza",

	// Contas mensais
	"Água",
	"Energia Elétrica",
	"Gás",
	"Internet",
	"Telefone",
	"TV por Assinatura",
	"Assinaturas (Netflix, Spotify, etc.)",
	"Cartão de Crédito",
	"Mensalidades / Parcelamentos",

	// Transporte
	"Combustível",
	"Transporte Público",
	"Estacionamento",
	"Manutenção do Veículo",
	"Pedágios",
	"Seguro Veicular",

	// Alimentação
	"Supermercado",
	"Feira",
	"Restaurantes",
	"Lanches / Delivery",
	"Café / Padaria",

	// Saúde
	"Plano de Saúde",
	"Medicamentos",
	"Consultas Médicas",
	"Exames",
	"Terapias",
	"Dentista",

	// Educação
	"Mensalidade Escolar",
	"Faculdade / Pós / Cursos",
	"Material Escolar / Livros",
	"Idiomas",
	"Educação Infantil",

	// Pessoal
	"Roupas",
	"Calçados",
	"Cosméticos",
	"Salão de Beleza / Barbearia",
	"Academia",
	"Cuidados Pessoais",

	// Lazer
	"Cinema / Teatro",
	"Viagens",
	"Passeios",
	"Jogos / Apps",
	"Eventos / Shows",

	// Obrigações financeiras
	"Empréstimos",
	"Financiamentos",
	"Impostos (IPTU, IPVA, IR etc.)",
	"Taxas Bancárias",
	"Doações / Caridade",
	"Pensão Alimentícia",
	"Multas",
	"Retirada / Transferência Pessoal",

	// Investimentos e poupança
	"Poupança",
	"Investimentos (ações, fundos, etc.)",
	"Criptomoedas",

	// Outros
	"Imprevistos",
	"Presentes",
	"Animais de Estimação",
	"Serviços Domésticos",
	"Outros",
}

// CategoriesFor returns the suggested category labels for a transaction type.
// The returned slice is a copy and may be modified by the caller.
func CategoriesFor(t TransactionType) []string {
	var src []string
	switch t {
	case TransactionTypeIncome:
		src = incomeCategories
	case TransactionTypeExpense:
		src = expenseCategories
	default:
		return []string{}
	}

	out := make([]string, len(src))
	copy(out, src)
	return out
}

// IsCatalogued reports whether category is one of the suggestions for t.
// It never gates writes: stored data may hold labels outside the catalog.
func IsCatalogued(t TransactionType, category string) bool {
	var src []string
	switch t {
	case TransactionTypeIncome:
		src = incomeCategories
	case TransactionTypeExpense:
		src = expenseCategories
	}

	for _, c := range src {
		if c == category {
			return true
		}
	}
	return false
}

// AvailableCategories returns the category options for a type filter.
// With no type filter the options come from the data itself, in first-seen
// order, so no option is offered that matches nothing.
func AvailableCategories(transactions []*Transaction, filter TypeFilter) []string {
	if t, ok := filter.transactionType(); ok {
		return CategoriesFor(t)
	}

	seen := make(map[string]struct{}, len(transactions))
	out := make([]string, 0)
	for _, tx := range transactions {
		if tx.Category == "" {
			continue
		}
		if _, dup := seen[tx.Category]; dup {
			continue
		}
		seen[tx.Category] = struct{}{}
		out = append(out, tx.Category)
	}
	return out
}
