package advice

import (
	"fmt"
	"strings"

	"fincoach/internal/core"
)

// RuleAdvise is the LLM-free advice mode: fixed templates selected by
// persona and simple substring checks on the query. The expense
// summary, when present, is appended verbatim.
func RuleAdvise(query string, persona core.Persona, expenseSummary string) string {
	var advice string
	switch persona {
	case core.PersonaProfessional:
		lower := strings.ToLower(query)
		if strings.Contains(lower, "save") && strings.Contains(query, "20%") {
			advice = professionalSaveTemplate
		} else {
			advice = fmt.Sprintf(professionalTemplate, query)
		}
	case core.PersonaStudent:
		advice = fmt.Sprintf(studentTemplate, query)
	default:
		advice = fmt.Sprintf(generalTemplate, query)
	}

	if expenseSummary != "" {
		advice += fmt.Sprintf("\n\n📊 **Your Expense Analysis:**\n%s\n\nBased on your spending patterns, I can provide more specific recommendations!", expenseSummary)
	}
	return advice
}

const professionalSaveTemplate = `🎯 **Professional Financial Strategy: Save 20% of Your Earnings**

📊 **Step-by-Step Plan:**

**1. Assess Your Current Situation:**
- Calculate your monthly take-home salary
- Track all expenses for 1-2 months
- Identify your spending patterns

**2. Apply the 50/30/20 Rule:**
- 50% for Needs (rent, utilities, groceries, EMIs)
- 30% for Wants (dining out, entertainment, shopping)
- 20% for Savings & Investments ✅

**3. Automate Your Savings:**
- Set up automatic transfers to savings account
- Use SIPs for mutual funds
- Consider PPF, ELSS for tax benefits

**4. Investment Strategy:**
- Emergency Fund: 6-12 months expenses
- Equity Mutual Funds (SIP): 60-70%
- Debt Funds/FDs: 20-30%
- Gold/REITs: 5-10%

**5. Tax Optimization:**
- Use Section 80C (₹1.5L limit)
- HRA exemption if applicable
- Health insurance deductions

💡 **Pro Tips:**
- Review and rebalance portfolio annually
- Increase SIP amount with salary hikes
- Track expenses using apps like this one!

Would you like a personalized budget breakdown based on your salary range?`

const professionalTemplate = `🎯 **Professional Financial Guidance**

Based on your query: "%s"

As a working professional, here's my step-by-step advice:

**1. Analysis Phase:**
- Understand your current financial position
- Set clear short-term and long-term goals
- Calculate your risk tolerance

**2. Action Plan:**
- Create a detailed budget (50/30/20 rule)
- Build an emergency fund (6-12 months expenses)
- Start systematic investments

**3. Investment Strategy:**
- Diversify across asset classes
- Use tax-saving instruments effectively
- Regular portfolio review and rebalancing

**4. Risk Management:**
- Adequate health and term insurance
- Avoid high-interest debt
- Maintain good credit score

Would you like me to provide specific recommendations based on your expense data?`

const studentTemplate = `🎓 **Student Financial Guidance**

Based on your query: "%s"

As a student, here's simple, practical advice:

**1. Budget Basics:**
- Track every rupee you spend
- Separate needs vs wants
- Try the 50/30/20 rule (adapted for pocket money)

**2. Smart Saving Tips:**
- Use student discounts everywhere
- Cook instead of ordering food
- Share textbooks and resources

**3. Early Financial Habits:**
- Start a small SIP (even ₹500/month)
- Learn about investments
- Avoid unnecessary EMIs

**4. Income Ideas:**
- Part-time tutoring
- Freelancing (writing, design)
- Campus jobs or internships

💡 **Student Pro Tips:**
- Use free financial apps for tracking
- Attend financial literacy workshops
- Build good credit history early

Would you like specific budgeting tips for students?`

const generalTemplate = `💰 **Personal Financial Guidance**

Based on your query: "%s"

Here's comprehensive financial advice:

**1. Foundation:**
- Track all income and expenses
- Create a realistic monthly budget
- Build an emergency fund

**2. Smart Spending:**
- Distinguish between needs and wants
- Use comparison shopping
- Avoid impulse purchases

**3. Saving & Investment:**
- Start with small amounts consistently
- Understand different investment options
- Consider tax implications

**4. Financial Discipline:**
- Automate savings and bill payments
- Regular financial health checkups
- Stay updated with financial knowledge

💡 **General Tips:**
- Use apps like this for expense tracking
- Set specific financial goals
- Review and adjust plans regularly

Would you like personalized advice based on your expense patterns?`
